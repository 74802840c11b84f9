// Package querycache keeps client-side copies of server-owned collections and
// applies speculative edits to them before the server confirms a mutation.
//
// A Collection is one logical list (e.g. categories). It may be materialized
// under several filter-parameterized views ("all", "active", "inactive").
// A mutation snapshots and edits every loaded view in one locked step, then
// either keeps the edit or restores the snapshots exactly, and finally marks
// every view stale so the next read refetches authoritative data.
package querycache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

var (
	// ErrUnknownView is returned for a variant that was never registered.
	ErrUnknownView = errors.New("querycache: unknown view")

	// ErrSuperseded is returned when a read kept overlapping mutations or
	// invalidations and never produced a current result.
	ErrSuperseded = errors.New("querycache: read superseded")

	errAborted = errors.New("querycache: mutation aborted")
)

// maxReissues bounds how often a superseded read is started again.
const maxReissues = 3

// Superseded reports whether ctx belongs to a fetch the collection cancelled
// because a mutation or invalidation overtook it.
func Superseded(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrSuperseded)
}

// Entity is an element of a server-owned collection.
type Entity[T any] interface {
	EntityID() string
	WithEntityID(id string) T
}

// Fetcher loads the authoritative contents of one view.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

type view[T any] struct {
	fetch    Fetcher[T]
	match    func(T) bool
	items    []T
	loaded   bool
	stale    bool
	inflight map[uint64]context.CancelCauseFunc
}

// ViewOption customizes a registered view.
type ViewOption[T any] func(*view[T])

// Matching restricts a view to entities satisfying pred. Speculative edits
// drop entities from the view once they stop matching, and creates only land
// in views that accept the new entity.
func Matching[T any](pred func(T) bool) ViewOption[T] {
	return func(v *view[T]) { v.match = pred }
}

// Collection caches the views of one logical collection.
type Collection[T Entity[T]] struct {
	name   string
	serial Serializer
	flight singleflight.Group

	mu       sync.Mutex
	views    map[string]*view[T]
	order    []string
	gen      uint64
	fetchSeq uint64
	mutating bool
	idle     chan struct{} // closed while no mutation is applied
}

// NewCollection creates an empty collection. A nil serializer orders
// mutations with an in-process lock.
func NewCollection[T Entity[T]](name string, serial Serializer) *Collection[T] {
	if serial == nil {
		serial = NewLockSerializer()
	}
	idle := make(chan struct{})
	close(idle)
	return &Collection[T]{
		name:   name,
		serial: serial,
		views:  make(map[string]*view[T]),
		idle:   idle,
	}
}

// Name returns the collection identity.
func (c *Collection[T]) Name() string { return c.name }

// Register materializes a view. Registering an existing variant replaces its
// fetcher and options and marks it stale.
func (c *Collection[T]) Register(variant string, fetch Fetcher[T], opts ...ViewOption[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.views[variant]
	if !ok {
		v = &view[T]{inflight: make(map[uint64]context.CancelCauseFunc)}
		c.views[variant] = v
		c.order = append(c.order, variant)
	}
	v.fetch = fetch
	v.match = nil
	for _, opt := range opts {
		opt(v)
	}
	v.stale = true
}

// Ensure registers variant unless it already exists. It reports whether a new
// view was created.
func (c *Collection[T]) Ensure(variant string, fetch Fetcher[T], opts ...ViewOption[T]) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.views[variant]; ok {
		return false
	}
	v := &view[T]{fetch: fetch, stale: true, inflight: make(map[uint64]context.CancelCauseFunc)}
	for _, opt := range opts {
		opt(v)
	}
	c.views[variant] = v
	c.order = append(c.order, variant)
	return true
}

// Variants returns the registered variants in registration order.
func (c *Collection[T]) Variants() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.order)
}

// Prime stores items as the fresh contents of variant.
func (c *Collection[T]) Prime(variant string, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[variant]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrUnknownView, c.name, variant)
	}
	v.items = c.filter(v, slices.Clone(items))
	v.loaded = true
	v.stale = false
	return nil
}

// Peek returns the current local contents of variant without fetching.
func (c *Collection[T]) Peek(variant string) ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[variant]
	if !ok || !v.loaded {
		return nil, false
	}
	return slices.Clone(v.items), true
}

// Invalidate marks every view stale and discards the results of reads that
// are still in flight.
func (c *Collection[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Collection[T]) invalidateLocked() {
	c.gen++
	for _, v := range c.views {
		v.stale = true
		for _, cancel := range v.inflight {
			cancel(ErrSuperseded)
		}
	}
}

// Get returns the contents of variant, fetching when the view is stale or
// not yet loaded. While a mutation is applied, loaded views are served from
// the speculative state and no fetch is started.
func (c *Collection[T]) Get(ctx context.Context, variant string) ([]T, error) {
	for reissue := 0; ; reissue++ {
		c.mu.Lock()
		v, ok := c.views[variant]
		if !ok {
			c.mu.Unlock()
			return nil, fmt.Errorf("%w: %s/%s", ErrUnknownView, c.name, variant)
		}
		if v.loaded && (!v.stale || c.mutating) {
			items := slices.Clone(v.items)
			c.mu.Unlock()
			return items, nil
		}
		idle := c.idle
		c.mu.Unlock()

		// A mutation is applied: wait for it to settle instead of racing it.
		select {
		case <-idle:
		case <-ctx.Done():
			return nil, apierr.FromTransport(ctx.Err())
		}
		if err := ctx.Err(); err != nil {
			return nil, apierr.FromTransport(err)
		}

		ch := c.flight.DoChan(variant, func() (any, error) {
			return c.load(context.WithoutCancel(ctx), variant)
		})
		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return nil, apierr.FromTransport(ctx.Err())
		}

		if errors.Is(res.Err, ErrSuperseded) {
			fetchesTotal.WithLabelValues(c.name, "superseded").Inc()
			if reissue >= maxReissues {
				return nil, res.Err
			}
			log.Debug().Str("collection", c.name).Str("variant", variant).Msg("read superseded, reissuing")
			continue
		}
		if res.Err != nil {
			fetchesTotal.WithLabelValues(c.name, "error").Inc()
			return nil, res.Err
		}
		fetchesTotal.WithLabelValues(c.name, "ok").Inc()
		return slices.Clone(res.Val.([]T)), nil
	}
}

// load runs the view's fetcher and stores the result only if no mutation or
// invalidation happened in the meantime.
func (c *Collection[T]) load(ctx context.Context, variant string) ([]T, error) {
	c.mu.Lock()
	v := c.views[variant]
	if c.mutating {
		c.mu.Unlock()
		return nil, ErrSuperseded
	}
	gen := c.gen
	fetch := v.fetch
	fctx, cancel := context.WithCancelCause(ctx)
	id := c.fetchSeq
	c.fetchSeq++
	v.inflight[id] = cancel
	c.mu.Unlock()

	items, err := fetch(fctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(v.inflight, id)
	cancel(nil)

	if c.gen != gen || c.mutating {
		return nil, ErrSuperseded
	}
	if err != nil {
		return nil, err
	}
	v.items = c.filter(v, slices.Clone(items))
	v.loaded = true
	v.stale = false
	return slices.Clone(v.items), nil
}

func (c *Collection[T]) filter(v *view[T], items []T) []T {
	if v.match == nil {
		return items
	}
	return slices.DeleteFunc(items, func(it T) bool { return !v.match(it) })
}
