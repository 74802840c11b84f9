package querycache

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// TempIDPrefix marks identifiers generated locally for speculative creates.
const TempIDPrefix = "tmp-"

// NewTempID returns a fresh temporary identifier.
func NewTempID() string { return TempIDPrefix + uuid.NewString() }

// IsTempID reports whether id was generated by NewTempID.
func IsTempID(id string) bool { return strings.HasPrefix(id, TempIDPrefix) }

// Orderable is implemented by entities carrying a display position.
// Reorder rewrites positions (1-based) for such entities.
type Orderable[T any] interface {
	WithOrder(pos int) T
}

// Create appends item to every view under a temporary identifier. The
// identifier is returned so callers can correlate the placeholder; it is
// discarded when the views are refetched after the commit.
func Create[T Entity[T]](item T, commit func(ctx context.Context) error) (Mutation[T], string) {
	tmp := NewTempID()
	placeholder := item.WithEntityID(tmp)
	return Mutation[T]{
		Kind: "create",
		Apply: func(items []T) []T {
			return append(items, placeholder)
		},
		Commit: commit,
	}, tmp
}

// Update replaces the entity with the given id by patch(entity).
func Update[T Entity[T]](id string, patch func(T) T, commit func(ctx context.Context) error) Mutation[T] {
	return Mutation[T]{
		Kind:   "update",
		Apply:  mapByID(id, patch),
		Commit: commit,
	}
}

// Toggle flips a boolean status of the entity with the given id.
func Toggle[T Entity[T]](id string, flip func(T) T, commit func(ctx context.Context) error) Mutation[T] {
	return Mutation[T]{
		Kind:   "toggle",
		Apply:  mapByID(id, flip),
		Commit: commit,
	}
}

// Delete removes the entity with the given id.
func Delete[T Entity[T]](id string, commit func(ctx context.Context) error) Mutation[T] {
	return Mutation[T]{
		Kind: "delete",
		Apply: func(items []T) []T {
			out := items[:0]
			for _, it := range items {
				if it.EntityID() != id {
					out = append(out, it)
				}
			}
			return out
		},
		Commit: commit,
	}
}

// Reorder arranges entities in the order of ids. Entities whose id is not
// listed keep their relative order after the listed ones; ids absent from a
// view are ignored.
func Reorder[T Entity[T]](ids []string, commit func(ctx context.Context) error) Mutation[T] {
	return Mutation[T]{
		Kind: "reorder",
		Apply: func(items []T) []T {
			return reorder(items, ids)
		},
		Commit: commit,
	}
}

func reorder[T Entity[T]](items []T, ids []string) []T {
	byID := make(map[string]T, len(items))
	for _, it := range items {
		byID[it.EntityID()] = it
	}
	out := make([]T, 0, len(items))
	placed := make(map[string]bool, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok && !placed[id] {
			out = append(out, it)
			placed[id] = true
		}
	}
	for _, it := range items {
		if !placed[it.EntityID()] {
			out = append(out, it)
		}
	}
	for i, it := range out {
		if o, ok := any(it).(Orderable[T]); ok {
			out[i] = o.WithOrder(i + 1)
		}
	}
	return out
}

func mapByID[T Entity[T]](id string, fn func(T) T) func([]T) []T {
	return func(items []T) []T {
		for i, it := range items {
			if it.EntityID() == id {
				items[i] = fn(it)
			}
		}
		return items
	}
}
