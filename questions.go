package client

import (
	"context"

	"github.com/d-nishikido/organization-survey-tool/client/internal/api"
	"github.com/d-nishikido/organization-survey-tool/client/internal/querycache"
	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

const allVariant = "all"

// QuestionStore caches the question bank as a whole and per category. A
// per-category view is materialized the first time it is listed.
type QuestionStore struct {
	c    *Client
	coll *querycache.Collection[types.Question]
}

func newQuestionStore(c *Client, serial querycache.Serializer) *QuestionStore {
	s := &QuestionStore{c: c, coll: querycache.NewCollection[types.Question](CollectionQuestions, serial)}
	s.coll.Register(allVariant, s.fetcher(""))
	return s
}

func (s *QuestionStore) fetcher(categoryID string) querycache.Fetcher[types.Question] {
	return func(ctx context.Context) ([]types.Question, error) {
		return withRetry(ctx, s.c, func(ctx context.Context) ([]types.Question, error) {
			return api.ListQuestions(ctx, s.c, categoryID)
		})
	}
}

func categoryVariant(id string) string { return "category:" + id }

// Questions returns the question store.
func (c *Client) Questions() *QuestionStore { return c.questions }

// List returns the question bank, or only the questions of categoryID.
func (s *QuestionStore) List(ctx context.Context, categoryID string) ([]Question, error) {
	variant := allVariant
	if categoryID != "" {
		variant = categoryVariant(categoryID)
		s.coll.Ensure(variant, s.fetcher(categoryID), querycache.Matching(func(q types.Question) bool {
			return q.CategoryID == categoryID
		}))
	}
	return cachedRead(ctx, s.c, s.coll, variant)
}

// Get fetches one question from the server.
func (s *QuestionStore) Get(ctx context.Context, id string) (*Question, error) {
	out, err := withRetry(ctx, s.c, func(ctx context.Context) (*types.Question, error) {
		return api.GetQuestion(ctx, s.c, id)
	})
	return out, normalize(err)
}

func (s *QuestionStore) Create(ctx context.Context, req CreateQuestionRequest) (*Question, error) {
	if err := types.ValidateCreateQuestion(req); err != nil {
		return nil, err
	}
	draft := types.Question{Text: req.Text, Type: req.Type, CategoryID: req.CategoryID, IsRequired: req.IsRequired, Options: req.Options}

	var created *types.Question
	m, _ := querycache.Create(draft, func(ctx context.Context) error {
		var err error
		created, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Question, error) {
			return api.CreateQuestion(ctx, s.c, req)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *QuestionStore) Update(ctx context.Context, id string, req UpdateQuestionRequest) (*Question, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdateQuestion(req); err != nil {
		return nil, err
	}
	var updated *types.Question
	m := querycache.Update(id, req.Apply, func(ctx context.Context) error {
		var err error
		updated, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Question, error) {
			return api.UpdateQuestion(ctx, s.c, id, req)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *QuestionStore) Delete(ctx context.Context, id string) error {
	if err := types.ValidateID("id", id); err != nil {
		return err
	}
	m := querycache.Delete[types.Question](id, func(ctx context.Context) error {
		return retryErr(ctx, s.c, func(ctx context.Context) error {
			return api.DeleteQuestion(ctx, s.c, id)
		})
	})
	return mutate(ctx, s.c, s.coll, m)
}
