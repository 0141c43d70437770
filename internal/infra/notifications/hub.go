// Package notifications fans registry list changes out to in-process
// listeners.
package notifications

import (
	"context"
	"slices"
	"sync"

	"plasma/internal/domain"
)

const subscriberBuffer = 8

type subscriber struct {
	kinds []domain.Kind
	ch    chan domain.ListChange
}

func (s *subscriber) wants(kind domain.Kind) bool {
	return len(s.kinds) == 0 || slices.Contains(s.kinds, kind)
}

// ListChangeHub delivers list changes to subscribers without blocking the
// publisher. A subscriber whose buffer is full misses the change, so
// listeners should re-read the registry rather than trust the event alone.
type ListChangeHub struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	latest map[domain.Kind]domain.ListChange
}

func NewListChangeHub() *ListChangeHub {
	return &ListChangeHub{
		subs:   make(map[*subscriber]struct{}),
		latest: make(map[domain.Kind]domain.ListChange),
	}
}

// EmitListChange records change and forwards it. Changes older than the
// latest one seen for the kind are dropped.
func (h *ListChangeHub) EmitListChange(change domain.ListChange) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if prev, ok := h.latest[change.Kind]; ok && prev.Revision > change.Revision {
		return
	}
	h.latest[change.Kind] = change
	for sub := range h.subs {
		if !sub.wants(change.Kind) {
			continue
		}
		select {
		case sub.ch <- change:
		default:
		}
	}
}

func (h *ListChangeHub) Latest(kind domain.Kind) (domain.ListChange, bool) {
	if h == nil {
		return domain.ListChange{}, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	change, ok := h.latest[kind]
	return change, ok
}

// Subscribe returns a channel of changes to kinds, or to every kind when none
// are given. The channel closes once ctx is done.
func (h *ListChangeHub) Subscribe(ctx context.Context, kinds ...domain.Kind) <-chan domain.ListChange {
	sub := &subscriber{kinds: kinds, ch: make(chan domain.ListChange, subscriberBuffer)}
	if h == nil {
		close(sub.ch)
		return sub.ch
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, sub)
		close(sub.ch)
		h.mu.Unlock()
	}()
	return sub.ch
}

var _ domain.ListChangeEmitter = (*ListChangeHub)(nil)
