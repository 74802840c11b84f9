package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// ListSurveys returns surveys, optionally narrowed to one status.
func ListSurveys(ctx context.Context, r Requester, status types.SurveyStatus) ([]types.Survey, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	var lr types.ListSurveysResponse
	if err := get(ctx, r, path("surveys"), q, &lr); err != nil {
		return nil, err
	}
	return lr.Surveys, nil
}

// GetSurvey retrieves a survey by ID.
func GetSurvey(ctx context.Context, r Requester, id string) (*types.Survey, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	var s types.Survey
	if err := get(ctx, r, path("surveys", id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSurvey creates a draft survey.
func CreateSurvey(ctx context.Context, r Requester, req types.CreateSurveyRequest) (*types.Survey, error) {
	if err := types.ValidateCreateSurvey(req); err != nil {
		return nil, err
	}
	var s types.Survey
	if err := send(ctx, r, http.MethodPost, path("surveys"), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSurvey applies a partial update.
func UpdateSurvey(ctx context.Context, r Requester, id string, req types.UpdateSurveyRequest) (*types.Survey, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdateSurvey(req); err != nil {
		return nil, err
	}
	var s types.Survey
	if err := send(ctx, r, http.MethodPut, path("surveys", id), req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSurvey deletes a survey.
func DeleteSurvey(ctx context.Context, r Requester, id string) error {
	if err := types.ValidateID("id", id); err != nil {
		return err
	}
	return send(ctx, r, http.MethodDelete, path("surveys", id), nil, nil)
}
