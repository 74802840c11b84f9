// Copyright 2025 The Synapse Authors.
//
// Package shardqueue provides a lightweight sharded work queue that keeps FIFO
// order per key while allowing parallelism across shards.
//
// Callers must not invoke Submit concurrently for the same key when they rely
// on submission order; Run provides that ordering for callers that wait.
package shardqueue

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

type queuedJob struct {
	ctx context.Context
	job Job
}

// ShardExecutor executes Jobs on worker goroutines partitioned by a stable hash
// of the key (a collection name). FIFO ordering is preserved within a shard;
// jobs with different keys may run in parallel.
type ShardExecutor struct {
	cfg    Config
	queues []chan queuedJob

	done   chan struct{} // closed in Stop()
	closed uint32        // 0 running, 1 closed

	wg sync.WaitGroup
}

// NewShardExecutor constructs the executor and starts its shard workers.
func NewShardExecutor(cfg Config) *ShardExecutor {
	cfg = cfg.withDefaults()
	p := &ShardExecutor{
		cfg:    cfg,
		queues: make([]chan queuedJob, cfg.Shards),
		done:   make(chan struct{}),
	}
	for i := 0; i < cfg.Shards; i++ {
		ch := make(chan queuedJob, cfg.QueueSize)
		p.queues[i] = ch
		p.wg.Add(1)
		go p.runWorker(i, ch)
	}
	return p
}

// Submit enqueues job for the shard derived from key.
//
//   - Returns nil on success.
//   - Returns ErrExecutorClosed if the executor is stopped.
//   - Returns ErrQueueFull (wrapped in *QueueFullError) if the shard is full
//     after EnqueueTimeout elapses.
//   - Returns ctx.Err() if the caller-provided context is cancelled first.
//
// A job whose context is done by the time it is dequeued is skipped.
func (p *ShardExecutor) Submit(ctx context.Context, key string, job Job) error {
	if atomic.LoadUint32(&p.closed) == 1 {
		return ErrExecutorClosed
	}
	select {
	case <-p.done:
		return ErrExecutorClosed
	default:
	}

	shard := p.shardFor(key)
	ch := p.queues[shard]

	timer := time.NewTimer(p.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case ch <- queuedJob{ctx: ctx, job: job}:
		submissionsTotal.WithLabelValues(labelFor(shard)).Inc()
		return nil
	case <-p.done:
		return ErrExecutorClosed
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		queueFullTotal.WithLabelValues(labelFor(shard)).Inc()
		return &QueueFullError{Shard: shard, Length: len(ch), Capacity: cap(ch)}
	}
}

const (
	statePending int32 = iota
	stateRunning
	stateAbandoned
)

type outcome struct {
	err      error
	panicked bool
	value    any
}

// Run submits fn under key and waits for it to finish, returning its error.
// If ctx ends before fn starts, fn never runs and Run returns ctx.Err(). Once
// fn has started Run waits for it regardless of ctx. A panic in fn is
// re-raised in the calling goroutine.
func (p *ShardExecutor) Run(ctx context.Context, key string, fn func(context.Context) error) error {
	var state atomic.Int32
	done := make(chan outcome, 1)

	job := JobFunc(func(jctx context.Context) (err error) {
		if !state.CompareAndSwap(statePending, stateRunning) {
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{panicked: true, value: r}
				err = &PanicError{Value: r}
				return
			}
			done <- outcome{err: err}
		}()
		return fn(jctx)
	})
	if err := p.Submit(ctx, key, job); err != nil {
		return err
	}

	var o outcome
	select {
	case o = <-done:
	case <-ctx.Done():
		if state.CompareAndSwap(statePending, stateAbandoned) {
			return ctx.Err()
		}
		o = <-done
	}
	if o.panicked {
		panic(o.value)
	}
	return o.err
}

// Barrier enqueues a no-op job on the shard for key and waits until it runs,
// ensuring all previously submitted jobs for that key have completed.
func (p *ShardExecutor) Barrier(ctx context.Context, key string) error {
	return p.Run(ctx, key, func(context.Context) error { return nil })
}

// Stop signals every worker to finish draining its current queue, waits for
// them to terminate, and then returns. It is idempotent and safe for
// concurrent use.
func (p *ShardExecutor) Stop() {
	if !atomic.CompareAndSwapUint32(&p.closed, 0, 1) {
		return
	}
	log.Debug().Int("shards", p.cfg.Shards).Msg("shardqueue: stopping executor")
	close(p.done)
	p.wg.Wait()
	log.Debug().Msg("shardqueue: executor stopped, all queues drained")
}

// Close lets ShardExecutor satisfy io.Closer.
func (p *ShardExecutor) Close() error {
	p.Stop()
	return nil
}

func (p *ShardExecutor) runWorker(idx int, ch <-chan queuedJob) {
	defer p.wg.Done()
	label := labelFor(idx)

	for {
		select {
		case qj := <-ch:
			p.exec(idx, qj)
			queueDepth.WithLabelValues(label).Set(float64(len(ch)))

		case <-p.done:
			drained := 0
			for {
				select {
				case qj := <-ch:
					p.exec(idx, qj)
					drained++
				default:
					if drained > 0 {
						log.Debug().Int("shard", idx).Int("jobs", drained).Msg("shardqueue: drained remaining jobs")
					}
					queueDepth.WithLabelValues(label).Set(0)
					return
				}
			}
		}
	}
}

// exec runs one job. Panics are contained so the shard keeps serving.
func (p *ShardExecutor) exec(idx int, qj queuedJob) {
	if qj.job == nil {
		return
	}
	if err := qj.ctx.Err(); err != nil {
		p.safeHandleError(err)
		return
	}

	start := time.Now()
	defer func() {
		runDuration.WithLabelValues(labelFor(idx)).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			log.Error().Int("shard", idx).Interface("panic", r).Msg("shardqueue: job panic")
			p.safeHandleError(&PanicError{Value: r})
		}
	}()
	if err := qj.job.Run(qj.ctx); err != nil {
		p.safeHandleError(err)
	}
}

func (p *ShardExecutor) safeHandleError(err error) {
	if err == nil || p.cfg.ErrorHandler == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("shardqueue: error handler panic")
		}
	}()
	p.cfg.ErrorHandler(err)
}

func (p *ShardExecutor) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(p.cfg.Shards))
}
