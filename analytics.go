package client

import (
	"context"
	"io"

	"github.com/d-nishikido/organization-survey-tool/client/internal/api"
	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// SurveySummary returns aggregate results of one survey.
func (c *Client) SurveySummary(ctx context.Context, surveyID string) (*SurveySummary, error) {
	out, err := withRetry(ctx, c, func(ctx context.Context) (*types.SurveySummary, error) {
		return api.GetSurveySummary(ctx, c, surveyID)
	})
	return out, normalize(err)
}

// Participation returns per-department participation.
func (c *Client) Participation(ctx context.Context, surveyID string) ([]ParticipationStat, error) {
	out, err := withRetry(ctx, c, func(ctx context.Context) ([]types.ParticipationStat, error) {
		return api.GetParticipation(ctx, c, surveyID)
	})
	return out, normalize(err)
}

// CategoryScores returns the average score per category.
func (c *Client) CategoryScores(ctx context.Context, surveyID string) ([]CategoryScore, error) {
	out, err := withRetry(ctx, c, func(ctx context.Context) ([]types.CategoryScore, error) {
		return api.GetCategoryScores(ctx, c, surveyID)
	})
	return out, normalize(err)
}

// ExportResponses streams the CSV export to w. It is not retried because
// part of the body may already have been written.
func (c *Client) ExportResponses(ctx context.Context, surveyID string, w io.Writer) error {
	return normalize(api.ExportResponses(ctx, c, surveyID, w))
}
