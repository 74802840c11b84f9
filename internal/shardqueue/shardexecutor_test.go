package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestExecutor_FIFOOrderPerKey(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 2, QueueSize: 16})
	defer ex.Stop()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 10; i++ {
		i := i
		if err := ex.Submit(context.Background(), "categories", JobFunc(func(context.Context) error {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
			return nil
		})); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}
	if err := ex.Barrier(context.Background(), "categories"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range got {
		if v != i {
			t.Fatalf("order broken at %d: %v", i, got)
		}
	}
	if len(got) != 10 {
		t.Fatalf("want 10 jobs, got %d", len(got))
	}
}

func TestExecutor_SubmitAfterStop(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1})
	ex.Stop()
	ex.Stop() // idempotent

	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	if !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("want ErrExecutorClosed, got %v", err)
	}
	if err := ex.Run(context.Background(), "k", func(context.Context) error { return nil }); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("Run after stop: want ErrExecutorClosed, got %v", err)
	}
}

func TestExecutor_StopDrainsQueuedJobs(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 8})

	release := make(chan struct{})
	var ran atomic.Int32
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		<-release
		ran.Add(1)
		return nil
	}))
	for i := 0; i < 3; i++ {
		_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			ran.Add(1)
			return nil
		}))
	}
	close(release)
	ex.Stop()

	if got := ran.Load(); got != 4 {
		t.Fatalf("want 4 jobs run before Stop returned, got %d", got)
	}
}

func TestExecutor_QueueFull(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer ex.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-block
		return nil
	}))
	<-started
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))

	err := ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))
	close(block)

	var qf *QueueFullError
	if !errors.As(err, &qf) || !errors.Is(err, ErrQueueFull) {
		t.Fatalf("want QueueFullError, got %v", err)
	}
	if qf.Capacity != 1 || qf.Length != 1 {
		t.Fatalf("unexpected queue stats %+v", qf)
	}
}

func TestExecutor_SubmitCtxCancelled(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: time.Second})
	defer ex.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-block
		return nil
	}))
	<-started
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { return nil }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ex.Submit(ctx, "k", JobFunc(func(context.Context) error { return nil }))
	close(block)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestExecutor_CancelledJobSkipped(t *testing.T) {
	t.Parallel()
	var handled atomic.Value
	ex := NewShardExecutor(Config{Shards: 1, ErrorHandler: func(err error) { handled.Store(err) }})
	defer ex.Stop()

	block := make(chan struct{})
	started := make(chan struct{})
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		close(started)
		<-block
		return nil
	}))
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	if err := ex.Submit(ctx, "k", JobFunc(func(context.Context) error {
		ran.Store(true)
		return nil
	})); err != nil {
		t.Fatalf("submit: %v", err)
	}
	cancel()
	close(block)
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}

	if ran.Load() {
		t.Fatal("cancelled job should not run")
	}
	if err, _ := handled.Load().(error); !errors.Is(err, context.Canceled) {
		t.Fatalf("error handler should see context.Canceled, got %v", err)
	}
}

func TestExecutor_WorkerSurvivesPanics(t *testing.T) {
	t.Parallel()
	var handled atomic.Value
	ex := NewShardExecutor(Config{Shards: 1, ErrorHandler: func(err error) {
		handled.Store(err)
		panic("handler also panics")
	}})
	defer ex.Stop()

	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error { panic("boom") }))

	var ran atomic.Bool
	_ = ex.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		ran.Store(true)
		return nil
	}))
	if err := ex.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if !ran.Load() {
		t.Fatal("job after panic did not run")
	}
	var pe *PanicError
	if err, _ := handled.Load().(error); !errors.As(err, &pe) || pe.Value != "boom" {
		t.Fatalf("want PanicError(boom), got %v", handled.Load())
	}
}

func TestExecutor_ParallelAcrossKeys(t *testing.T) {
	t.Parallel()
	ex := NewShardExecutor(Config{Shards: 8})
	defer ex.Stop()

	// Find two keys on different shards.
	a, b := "categories", ""
	for _, k := range []string{"questions", "surveys", "analytics", "operations", "k1", "k2"} {
		if ex.shardFor(k) != ex.shardFor(a) {
			b = k
			break
		}
	}
	if b == "" {
		t.Skip("no key on a distinct shard")
	}

	release := make(chan struct{})
	defer close(release)
	_ = ex.Submit(context.Background(), a, JobFunc(func(context.Context) error {
		<-release
		return nil
	}))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := ex.Barrier(ctx, b); err != nil {
		t.Fatalf("key %q blocked by key %q: %v", b, a, err)
	}
}

func TestJobFunc_Nil(t *testing.T) {
	t.Parallel()
	var f JobFunc
	if err := f.Run(context.Background()); !errors.Is(err, ErrNilJobFunc) {
		t.Fatalf("want ErrNilJobFunc, got %v", err)
	}
}
