package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

func GetSurveySummary(ctx context.Context, r Requester, surveyID string) (*types.SurveySummary, error) {
	if err := types.ValidateID("surveyId", surveyID); err != nil {
		return nil, err
	}
	var s types.SurveySummary
	if err := get(ctx, r, path("analytics", "surveys", surveyID, "summary"), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func GetParticipation(ctx context.Context, r Requester, surveyID string) ([]types.ParticipationStat, error) {
	if err := types.ValidateID("surveyId", surveyID); err != nil {
		return nil, err
	}
	var pr types.ParticipationResponse
	if err := get(ctx, r, path("analytics", "surveys", surveyID, "participation"), nil, &pr); err != nil {
		return nil, err
	}
	return pr.Stats, nil
}

func GetCategoryScores(ctx context.Context, r Requester, surveyID string) ([]types.CategoryScore, error) {
	if err := types.ValidateID("surveyId", surveyID); err != nil {
		return nil, err
	}
	var cr types.CategoryScoresResponse
	if err := get(ctx, r, path("analytics", "surveys", surveyID, "categories"), nil, &cr); err != nil {
		return nil, err
	}
	return cr.Scores, nil
}

// ExportResponses streams the raw CSV export of a survey's responses to w.
func ExportResponses(ctx context.Context, r Requester, surveyID string, w io.Writer) error {
	if err := types.ValidateID("surveyId", surveyID); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return apierr.FromTransport(err)
	}
	return r.Send(ctx, Call{
		Method: http.MethodGet,
		Path:   path("analytics", "surveys", surveyID, "export"),
		Query:  url.Values{"format": {"csv"}},
		Raw:    w,
	})
}
