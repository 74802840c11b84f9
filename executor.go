package client

import (
	"context"
	"errors"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
	"github.com/d-nishikido/organization-survey-tool/client/internal/shardqueue"
)

// Executor runs cache mutations one at a time per collection, in submission
// order. The default is a sharded FIFO executor configured from SQ_*.
type Executor interface {
	Run(ctx context.Context, key string, fn func(context.Context) error) error
	Barrier(ctx context.Context, key string) error
	Stop()
}

// mutationSerializer adapts an Executor to the cache's serializer, mapping
// executor failures onto client errors.
type mutationSerializer struct {
	exec Executor
}

func (s *mutationSerializer) Run(ctx context.Context, key string, fn func(context.Context) error) error {
	return mapExecErr(s.exec.Run(ctx, key, fn))
}

func mapExecErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, shardqueue.ErrExecutorClosed):
		return ErrClosed
	case errors.Is(err, shardqueue.ErrQueueFull):
		return errors.Join(ErrBackPressure, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		if _, ok := apierr.As(err); ok {
			return err
		}
		return apierr.FromTransport(err)
	}
	return err
}
