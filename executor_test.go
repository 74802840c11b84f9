package client

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d-nishikido/organization-survey-tool/client/internal/querycache"
	"github.com/d-nishikido/organization-survey-tool/client/internal/shardqueue"
)

type stubExecutor struct {
	stops atomic.Int32
	err   error
}

func (s *stubExecutor) Run(ctx context.Context, _ string, fn func(context.Context) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(ctx)
}

func (s *stubExecutor) Barrier(context.Context, string) error { return s.err }
func (s *stubExecutor) Stop()                                 { s.stops.Add(1) }

func TestClose_Idempotent(t *testing.T) {
	ex := &stubExecutor{}
	c, err := New("http://example.invalid", WithExecutor(ex))
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, int32(1), ex.stops.Load())
}

func TestMutationsAfterClose(t *testing.T) {
	b := newFakeBackend(t, seedCategories()...)
	c, _ := newTestClient(t, b)
	require.NoError(t, c.Close())

	err := c.Categories().Delete(context.Background(), "1")
	assert.ErrorIs(t, err, ErrClosed)
	assert.Zero(t, b.count("DELETE /api/categories/{id}"))
}

func TestBackPressureSurfaces(t *testing.T) {
	full := &shardqueue.QueueFullError{Shard: 1, Length: 8, Capacity: 8}
	b := newFakeBackend(t, seedCategories()...)
	c, _ := newTestClient(t, b, WithExecutor(&stubExecutor{err: full}))

	err := c.Categories().Delete(context.Background(), "1")
	assert.True(t, IsBackPressure(err), "%v", err)
	assert.ErrorIs(t, err, shardqueue.ErrQueueFull)
}

func TestMapExecErr(t *testing.T) {
	assert.NoError(t, mapExecErr(nil))
	assert.Equal(t, ErrClosed, mapExecErr(shardqueue.ErrExecutorClosed))
	assert.True(t, IsBackPressure(mapExecErr(&shardqueue.QueueFullError{})))
	assert.True(t, IsCode(mapExecErr(context.Canceled), CodeTimeout))
	assert.True(t, IsCode(mapExecErr(context.DeadlineExceeded), CodeTimeout))

	other := errors.New("boom")
	assert.Equal(t, other, mapExecErr(other))
}

func TestNormalize(t *testing.T) {
	assert.NoError(t, normalize(nil))
	assert.Equal(t, ErrClosed, normalize(ErrClosed))
	assert.True(t, IsCode(normalize(querycache.ErrSuperseded), CodeUnknown))
	assert.True(t, IsCode(normalize(querycache.ErrUnknownView), CodeUnknown))
	assert.True(t, IsCode(normalize(errors.New("dial tcp: refused")), CodeNetwork))
}

func TestAwaitMutations(t *testing.T) {
	b := newFakeBackend(t, seedCategories()...)
	c, _ := newTestClient(t, b)
	ctx := context.Background()

	_, err := c.Categories().List(ctx, "")
	require.NoError(t, err)

	g := b.gateRoute("DELETE /api/categories/{id}")
	done := make(chan error, 1)
	go func() { done <- c.Categories().Delete(ctx, "1") }()
	g.wait(t)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.True(t, IsCode(c.AwaitMutations(cancelled, CollectionCategories), CodeTimeout))

	awaited := make(chan error, 1)
	go func() { awaited <- c.AwaitMutations(ctx, CollectionCategories) }()
	select {
	case <-awaited:
		t.Fatal("barrier passed a pending mutation")
	default:
	}

	g.open()
	require.NoError(t, <-done)
	require.NoError(t, <-awaited)
}
