package types

// ------------------------------
// Response Types
// ------------------------------

// ListCategoriesResponse mirrors the list endpoint response shape.
type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
	Total      int        `json:"total"`
}

// ListQuestionsResponse mirrors the list endpoint response shape.
type ListQuestionsResponse struct {
	Questions []Question `json:"questions"`
	Total     int        `json:"total"`
}

// ListSurveysResponse mirrors the list endpoint response shape.
type ListSurveysResponse struct {
	Surveys []Survey `json:"surveys"`
	Total   int      `json:"total"`
}

// ParticipationResponse wraps per-department participation.
type ParticipationResponse struct {
	SurveyID string              `json:"surveyId"`
	Stats    []ParticipationStat `json:"stats"`
}

// CategoryScoresResponse wraps per-category scores.
type CategoryScoresResponse struct {
	SurveyID string          `json:"surveyId"`
	Scores   []CategoryScore `json:"scores"`
}
