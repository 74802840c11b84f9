package api

import (
	"context"
	"net/http"

	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// RunOperation issues a lifecycle command (start, pause, stop) and returns the
// resulting operation status.
func RunOperation(ctx context.Context, r Requester, surveyID string, op types.Operation) (*types.OperationStatus, error) {
	if err := types.ValidateID("surveyId", surveyID); err != nil {
		return nil, err
	}
	var st types.OperationStatus
	if err := send(ctx, r, http.MethodPost, path("operations", "surveys", surveyID, string(op)), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// StartSurvey opens a draft or paused survey for responses.
func StartSurvey(ctx context.Context, r Requester, surveyID string) (*types.OperationStatus, error) {
	return RunOperation(ctx, r, surveyID, types.OpStart)
}

// PauseSurvey stops accepting responses until the survey is started again.
func PauseSurvey(ctx context.Context, r Requester, surveyID string) (*types.OperationStatus, error) {
	return RunOperation(ctx, r, surveyID, types.OpPause)
}

// StopSurvey closes the survey for good.
func StopSurvey(ctx context.Context, r Requester, surveyID string) (*types.OperationStatus, error) {
	return RunOperation(ctx, r, surveyID, types.OpStop)
}

// GetOperationStatus returns live participation counters for a survey.
func GetOperationStatus(ctx context.Context, r Requester, surveyID string) (*types.OperationStatus, error) {
	if err := types.ValidateID("surveyId", surveyID); err != nil {
		return nil, err
	}
	var st types.OperationStatus
	if err := get(ctx, r, path("operations", "surveys", surveyID, "status"), nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
