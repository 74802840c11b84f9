package client

import (
	"context"
	"fmt"

	"github.com/d-nishikido/organization-survey-tool/client/internal/api"
	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
	"github.com/d-nishikido/organization-survey-tool/client/internal/querycache"
	"github.com/d-nishikido/organization-survey-tool/client/internal/types"
)

// SurveyStore caches surveys under "all" and one view per status, and runs
// lifecycle operations as optimistic status changes.
type SurveyStore struct {
	c    *Client
	coll *querycache.Collection[types.Survey]
}

var surveyStatuses = []types.SurveyStatus{types.SurveyDraft, types.SurveyActive, types.SurveyPaused, types.SurveyClosed}

func newSurveyStore(c *Client, serial querycache.Serializer) *SurveyStore {
	s := &SurveyStore{c: c, coll: querycache.NewCollection[types.Survey](CollectionSurveys, serial)}
	s.coll.Register(allVariant, s.fetcher(""))
	for _, st := range surveyStatuses {
		st := st
		s.coll.Register(string(st), s.fetcher(st), querycache.Matching(func(sv types.Survey) bool {
			return sv.Status == st
		}))
	}
	return s
}

func (s *SurveyStore) fetcher(status types.SurveyStatus) querycache.Fetcher[types.Survey] {
	return func(ctx context.Context) ([]types.Survey, error) {
		return withRetry(ctx, s.c, func(ctx context.Context) ([]types.Survey, error) {
			return api.ListSurveys(ctx, s.c, status)
		})
	}
}

// Surveys returns the survey store.
func (c *Client) Surveys() *SurveyStore { return c.surveys }

// List returns surveys with the given status; "" means all.
func (s *SurveyStore) List(ctx context.Context, status SurveyStatus) ([]Survey, error) {
	variant := allVariant
	if status != "" {
		if !status.Valid() {
			return nil, invalidField("status", fmt.Sprintf("unknown status %q", status))
		}
		variant = string(status)
	}
	return cachedRead(ctx, s.c, s.coll, variant)
}

func (s *SurveyStore) Get(ctx context.Context, id string) (*Survey, error) {
	out, err := withRetry(ctx, s.c, func(ctx context.Context) (*types.Survey, error) {
		return api.GetSurvey(ctx, s.c, id)
	})
	return out, normalize(err)
}

// Create adds a draft survey.
func (s *SurveyStore) Create(ctx context.Context, req CreateSurveyRequest) (*Survey, error) {
	if err := types.ValidateCreateSurvey(req); err != nil {
		return nil, err
	}
	draft := types.Survey{
		Title:       req.Title,
		Description: req.Description,
		Status:      types.SurveyDraft,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Anonymous:   req.Anonymous,
		QuestionIDs: req.QuestionIDs,
	}
	var created *types.Survey
	m, _ := querycache.Create(draft, func(ctx context.Context) error {
		var err error
		created, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Survey, error) {
			return api.CreateSurvey(ctx, s.c, req)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return created, nil
}

func (s *SurveyStore) Update(ctx context.Context, id string, req UpdateSurveyRequest) (*Survey, error) {
	if err := types.ValidateID("id", id); err != nil {
		return nil, err
	}
	if err := types.ValidateUpdateSurvey(req); err != nil {
		return nil, err
	}
	var updated *types.Survey
	m := querycache.Update(id, req.Apply, func(ctx context.Context) error {
		var err error
		updated, err = withRetry(ctx, s.c, func(ctx context.Context) (*types.Survey, error) {
			return api.UpdateSurvey(ctx, s.c, id, req)
		})
		return err
	})
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *SurveyStore) Delete(ctx context.Context, id string) error {
	if err := types.ValidateID("id", id); err != nil {
		return err
	}
	m := querycache.Delete[types.Survey](id, func(ctx context.Context) error {
		return retryErr(ctx, s.c, func(ctx context.Context) error {
			return api.DeleteSurvey(ctx, s.c, id)
		})
	})
	return mutate(ctx, s.c, s.coll, m)
}

func (s *SurveyStore) Start(ctx context.Context, id string) (*OperationStatus, error) {
	return s.operate(ctx, id, types.OpStart, api.StartSurvey)
}

func (s *SurveyStore) Pause(ctx context.Context, id string) (*OperationStatus, error) {
	return s.operate(ctx, id, types.OpPause, api.PauseSurvey)
}

func (s *SurveyStore) Stop(ctx context.Context, id string) (*OperationStatus, error) {
	return s.operate(ctx, id, types.OpStop, api.StopSurvey)
}

type operationFunc func(context.Context, api.Requester, string) (*types.OperationStatus, error)

// operate moves the cached survey to the operation's target status before
// the server confirms. A transition the cached status forbids is rejected
// without a request; surveys not in the cache are left to the server.
// Lifecycle commands are not retried: a lost response may hide an applied
// transition.
func (s *SurveyStore) operate(ctx context.Context, id string, op types.Operation, send operationFunc) (*OperationStatus, error) {
	if err := types.ValidateID("surveyId", id); err != nil {
		return nil, err
	}
	target, known, err := s.target(id, op)
	if err != nil {
		return nil, err
	}

	var st *types.OperationStatus
	m := querycache.Update(id, func(sv types.Survey) types.Survey {
		if known {
			sv.Status = target
		}
		return sv
	}, func(ctx context.Context) error {
		var err error
		st, err = send(ctx, s.c, id)
		return err
	})
	m.Kind = string(op)
	if err := mutate(ctx, s.c, s.coll, m); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *SurveyStore) target(id string, op types.Operation) (types.SurveyStatus, bool, error) {
	cached, ok := s.coll.Peek(allVariant)
	if !ok {
		return "", false, nil
	}
	for _, sv := range cached {
		if sv.ID != id {
			continue
		}
		to, allowed := op.Target(sv.Status)
		if !allowed {
			return "", false, invalidField("status", fmt.Sprintf("cannot %s a %s survey", op, sv.Status))
		}
		return to, true, nil
	}
	return "", false, nil
}

// Status returns live participation counters.
func (s *SurveyStore) Status(ctx context.Context, id string) (*OperationStatus, error) {
	out, err := withRetry(ctx, s.c, func(ctx context.Context) (*types.OperationStatus, error) {
		return api.GetOperationStatus(ctx, s.c, id)
	})
	return out, normalize(err)
}

func invalidField(field, msg string) error {
	return apierr.New(apierr.CodeValidation, apierr.MsgValidation, 400).WithDetails(map[string]any{field: msg})
}

// Cached returns the local surveys with status without fetching; "" means
// all.
func (s *SurveyStore) Cached(status SurveyStatus) ([]Survey, bool) {
	variant := allVariant
	if status != "" {
		variant = string(status)
	}
	return s.coll.Peek(variant)
}
