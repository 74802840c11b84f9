package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// ListQuestions returns the question bank, narrowed to one category when
// categoryID is set.
func ListQuestions(ctx context.Context, r Requester, categoryID string) ([]types.Question, error) {
	var q url.Values
	if categoryID != "" {
		q = url.Values{"categoryId": {categoryID}}
	}
	var lr types.ListQuestionsResponse
	if err := get(ctx, r, path("questions"), q, &lr); err != nil {
		return nil, err
	}
	return lr.Questions, nil
}

func GetQuestion(ctx context.Context, r Requester, id string) (*types.Question, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	var out types.Question
	if err := get(ctx, r, path("questions", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func CreateQuestion(ctx context.Context, r Requester, req types.CreateQuestionRequest) (*types.Question, error) {
	if err := types.ValidateCreateQuestion(req); err != nil {
		return nil, err
	}
	var out types.Question
	if err := send(ctx, r, http.MethodPost, path("questions"), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func UpdateQuestion(ctx context.Context, r Requester, id string, req types.UpdateQuestionRequest) (*types.Question, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdateQuestion(req); err != nil {
		return nil, err
	}
	var out types.Question
	if err := send(ctx, r, http.MethodPut, path("questions", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func DeleteQuestion(ctx context.Context, r Requester, id string) error {
	if err := types.ValidateID("id", id); err != nil {
		return err
	}
	return send(ctx, r, http.MethodDelete, path("questions", id), nil, nil)
}
