package querycache

import (
	"context"
	"sync"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

// Serializer runs fn once every fn previously submitted under the same key
// has finished.
type Serializer interface {
	Run(ctx context.Context, key string, fn func(context.Context) error) error
}

// LockSerializer serializes with one semaphore per key. Waiters are not
// guaranteed FIFO.
type LockSerializer struct {
	mu   sync.Mutex
	sems map[string]chan struct{}
}

// NewLockSerializer returns an empty LockSerializer.
func NewLockSerializer() *LockSerializer {
	return &LockSerializer{sems: make(map[string]chan struct{})}
}

// Run implements Serializer.
func (s *LockSerializer) Run(ctx context.Context, key string, fn func(context.Context) error) error {
	s.mu.Lock()
	sem, ok := s.sems[key]
	if !ok {
		sem = make(chan struct{}, 1)
		s.sems[key] = sem
	}
	s.mu.Unlock()

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return apierr.FromTransport(ctx.Err())
	}
	defer func() { <-sem }()
	return fn(ctx)
}
