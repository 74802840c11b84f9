package types

import "time"

// ------------------------------
// Core Domain Entities
// ------------------------------

// Category groups questions on a survey.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	DisplayOrder int       `json:"displayOrder"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`
}

func (c Category) EntityID() string { return c.ID }

func (c Category) WithEntityID(id string) Category {
	c.ID = id
	return c
}

func (c Category) WithOrder(pos int) Category {
	c.DisplayOrder = pos
	return c
}

// QuestionType is the answer format of a question.
type QuestionType string

const (
	QuestionRating         QuestionType = "rating"
	QuestionText           QuestionType = "text"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionYesNo          QuestionType = "yes_no"
)

// Valid reports whether t is a known question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionRating, QuestionText, QuestionMultipleChoice, QuestionYesNo:
		return true
	}
	return false
}

// Question is an entry of the question bank.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Type         QuestionType `json:"type"`
	CategoryID   string       `json:"categoryId,omitempty"`
	IsRequired   bool         `json:"isRequired"`
	Options      []string     `json:"options,omitempty"`
	DisplayOrder int          `json:"displayOrder"`
	CreatedAt    time.Time    `json:"createdAt,omitzero"`
	UpdatedAt    time.Time    `json:"updatedAt,omitzero"`
}

func (q Question) EntityID() string { return q.ID }

func (q Question) WithEntityID(id string) Question {
	q.ID = id
	return q
}

func (q Question) WithOrder(pos int) Question {
	q.DisplayOrder = pos
	return q
}

// SurveyStatus is the lifecycle state of a survey.
type SurveyStatus string

const (
	SurveyDraft  SurveyStatus = "draft"
	SurveyActive SurveyStatus = "active"
	SurveyPaused SurveyStatus = "paused"
	SurveyClosed SurveyStatus = "closed"
)

// Valid reports whether s is a known status.
func (s SurveyStatus) Valid() bool {
	switch s {
	case SurveyDraft, SurveyActive, SurveyPaused, SurveyClosed:
		return true
	}
	return false
}

// Survey is a scheduled questionnaire.
type Survey struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      SurveyStatus `json:"status"`
	StartDate   time.Time    `json:"startDate"`
	EndDate     time.Time    `json:"endDate"`
	Anonymous   bool         `json:"isAnonymous"`
	QuestionIDs []string     `json:"questionIds,omitempty"`
	CreatedAt   time.Time    `json:"createdAt,omitzero"`
	UpdatedAt   time.Time    `json:"updatedAt,omitzero"`
}

func (s Survey) EntityID() string { return s.ID }

func (s Survey) WithEntityID(id string) Survey {
	s.ID = id
	return s
}

// Operation is a survey lifecycle command.
type Operation string

const (
	OpStart Operation = "start"
	OpPause Operation = "pause"
	OpStop  Operation = "stop"
)

// Target returns the status a survey in state from moves to under op, and
// false when the transition is not allowed.
func (op Operation) Target(from SurveyStatus) (SurveyStatus, bool) {
	switch op {
	case OpStart:
		if from == SurveyDraft || from == SurveyPaused {
			return SurveyActive, true
		}
	case OpPause:
		if from == SurveyActive {
			return SurveyPaused, true
		}
	case OpStop:
		if from == SurveyActive || from == SurveyPaused {
			return SurveyClosed, true
		}
	}
	return "", false
}

// OperationStatus reports the live state of a running survey.
type OperationStatus struct {
	SurveyID         string       `json:"surveyId"`
	Status           SurveyStatus `json:"status"`
	ParticipantCount int          `json:"participantCount"`
	ResponseCount    int          `json:"responseCount"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// ResponseRate is ResponseCount over ParticipantCount, 0 with no participants.
func (o OperationStatus) ResponseRate() float64 {
	if o.ParticipantCount == 0 {
		return 0
	}
	return float64(o.ResponseCount) / float64(o.ParticipantCount)
}

// ------------------------------
// Analytics
// ------------------------------

// SurveySummary aggregates one survey's results.
type SurveySummary struct {
	SurveyID          string  `json:"surveyId"`
	Title             string  `json:"title"`
	TotalParticipants int     `json:"totalParticipants"`
	TotalResponses    int     `json:"totalResponses"`
	ResponseRate      float64 `json:"responseRate"`
	AverageScore      float64 `json:"averageScore"`
}

// ParticipationStat is participation for one department.
type ParticipationStat struct {
	Department   string  `json:"department"`
	Participants int     `json:"participants"`
	Responses    int     `json:"responses"`
	Rate         float64 `json:"rate"`
}

// CategoryScore is the average score of one category.
type CategoryScore struct {
	CategoryID    string  `json:"categoryId"`
	CategoryName  string  `json:"categoryName"`
	AverageScore  float64 `json:"averageScore"`
	ResponseCount int     `json:"responseCount"`
}
