package client

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/d-nishikido/organization-survey-tool/client/internal/apierr"
)

// EventType is the severity of a notification.
type EventType string

const (
	EventError   EventType = "error"
	EventWarning EventType = "warning"
)

// Event is published for every normalized request failure.
type Event struct {
	Err     *Error
	Message string // localized, safe to show to users
	Type    EventType
}

// NewEvent builds the notification for e in locale. Validation failures and
// missing resources are warnings; everything else is an error.
func NewEvent(e *Error, locale string) Event {
	if e == nil {
		return Event{Message: apierr.UserMessage(nil, locale), Type: EventError}
	}
	typ := EventError
	if e.Code == apierr.CodeValidation || e.Code == apierr.CodeNotFound {
		typ = EventWarning
	}
	return Event{Err: e, Message: apierr.UserMessage(e, locale), Type: typ}
}

// Notifier is a synchronous publish/subscribe bus.
type Notifier struct {
	mu   sync.RWMutex
	next uint64
	subs map[uint64]func(Event)
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[uint64]func(Event))}
}

// Subscribe registers fn and returns a function removing it. Subscribers are
// called in subscription order.
func (n *Notifier) Subscribe(fn func(Event)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// Publish delivers ev to every subscriber on the calling goroutine. A
// panicking subscriber is logged and skipped.
func (n *Notifier) Publish(ev Event) {
	n.mu.RLock()
	ids := make([]uint64, 0, len(n.subs))
	for id := range n.subs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(Event), len(ids))
	for i, id := range ids {
		fns[i] = n.subs[id]
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		deliver(fn, ev)
	}
}

func deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("notification subscriber panic")
		}
	}()
	fn(ev)
}
