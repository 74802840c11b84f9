package querycache

import (
	"context"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

// Mutation describes one speculative edit and the server call confirming it.
type Mutation[T any] struct {
	// Kind labels the mutation in logs and metrics (create, update, ...).
	Kind string
	// Apply returns the speculative contents of a view. It receives a copy
	// and may modify it in place.
	Apply func(items []T) []T
	// Commit performs the server round trip.
	Commit func(ctx context.Context) error
	// OnSettled, when set, runs after rollback or confirmation and after
	// the collection has been invalidated.
	OnSettled func(err error)
}

type snapshot[T any] struct {
	items  []T
	loaded bool
}

// Mutate applies m speculatively to every loaded view, runs m.Commit, and
// on failure restores every view exactly as it was before the apply. Every
// view is invalidated once the commit settles. Mutations on one collection
// run one at a time, in submission order.
func (c *Collection[T]) Mutate(ctx context.Context, m Mutation[T]) error {
	return c.serial.Run(ctx, c.name, func(ctx context.Context) error {
		return c.mutate(ctx, m)
	})
}

func (c *Collection[T]) mutate(ctx context.Context, m Mutation[T]) (err error) {
	snaps := c.apply(m)

	err = errAborted
	defer func() {
		c.settle(snaps, err)
		outcome := "confirmed"
		if err != nil {
			outcome = "rolled_back"
		}
		mutationsTotal.WithLabelValues(c.name, m.Kind, outcome).Inc()
		if m.OnSettled != nil {
			m.OnSettled(err)
		}
	}()

	err = m.Commit(ctx)
	return err
}

// apply cancels reads in flight, snapshots every view and installs the
// speculative state, all under one lock acquisition.
func (c *Collection[T]) apply(m Mutation[T]) map[string]snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.invalidateLocked()
	c.mutating = true
	c.idle = make(chan struct{})

	snaps := make(map[string]snapshot[T], len(c.views))
	for name, v := range c.views {
		snaps[name] = snapshot[T]{items: slices.Clone(v.items), loaded: v.loaded}
		if !v.loaded {
			continue
		}
		v.items = c.filter(v, m.Apply(slices.Clone(v.items)))
	}
	return snaps
}

func (c *Collection[T]) settle(snaps map[string]snapshot[T], err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		for name, s := range snaps {
			v, ok := c.views[name]
			if !ok {
				continue
			}
			v.items = s.items
			v.loaded = s.loaded
		}
		ev := log.Warn().Str("collection", c.name).Int("views", len(snaps))
		if e, ok := apierr.As(err); ok {
			ev = ev.Str("code", string(e.Code))
		} else {
			ev = ev.Err(err)
		}
		ev.Msg("optimistic update rolled back")
	}

	c.invalidateLocked()
	c.mutating = false
	close(c.idle)
}
