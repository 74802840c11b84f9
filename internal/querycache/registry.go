package querycache

import (
	"fmt"
	"sort"
	"sync"
)

// Invalidator is the type-erased face of a Collection.
type Invalidator interface {
	Name() string
	Variants() []string
	Invalidate()
}

// Registry maps collection identities to their collections so that code
// touching one collection can invalidate related ones by name.
type Registry struct {
	mu          sync.RWMutex
	collections map[string]Invalidator
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{collections: make(map[string]Invalidator)}
}

// Add registers c under its name. Names are unique.
func (r *Registry) Add(c Invalidator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.collections[c.Name()]; dup {
		return fmt.Errorf("querycache: collection %q already registered", c.Name())
	}
	r.collections[c.Name()] = c
	return nil
}

// Get returns the collection registered under name.
func (r *Registry) Get(name string) (Invalidator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[name]
	return c, ok
}

// Invalidate marks every view of the named collections stale. Unknown names
// are ignored.
func (r *Registry) Invalidate(names ...string) {
	r.mu.RLock()
	targets := make([]Invalidator, 0, len(names))
	for _, n := range names {
		if c, ok := r.collections[n]; ok {
			targets = append(targets, c)
		}
	}
	r.mu.RUnlock()
	for _, c := range targets {
		c.Invalidate()
	}
}

// Names returns the registered collection names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.collections))
	for n := range r.collections {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
