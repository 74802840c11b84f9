package client

import "github.com/d-nishikido/organization-survey-tool/client/internal/types"

// Public type aliases so SDK consumers can import only the client package.
type (
	// Domain entities
	Category        = types.Category
	Question        = types.Question
	QuestionType    = types.QuestionType
	Survey          = types.Survey
	SurveyStatus    = types.SurveyStatus
	Operation       = types.Operation
	OperationStatus = types.OperationStatus

	// Analytics
	SurveySummary     = types.SurveySummary
	ParticipationStat = types.ParticipationStat
	CategoryScore     = types.CategoryScore

	// Requests
	CategoryFilter        = types.CategoryFilter
	CreateCategoryRequest = types.CreateCategoryRequest
	UpdateCategoryRequest = types.UpdateCategoryRequest
	CreateQuestionRequest = types.CreateQuestionRequest
	UpdateQuestionRequest = types.UpdateQuestionRequest
	CreateSurveyRequest   = types.CreateSurveyRequest
	UpdateSurveyRequest   = types.UpdateSurveyRequest
)

const (
	CategoriesAll      = types.CategoriesAll
	CategoriesActive   = types.CategoriesActive
	CategoriesInactive = types.CategoriesInactive

	SurveyDraft  = types.SurveyDraft
	SurveyActive = types.SurveyActive
	SurveyPaused = types.SurveyPaused
	SurveyClosed = types.SurveyClosed

	QuestionRating         = types.QuestionRating
	QuestionText           = types.QuestionText
	QuestionMultipleChoice = types.QuestionMultipleChoice
	QuestionYesNo          = types.QuestionYesNo

	OpStart = types.OpStart
	OpPause = types.OpPause
	OpStop  = types.OpStop
)
