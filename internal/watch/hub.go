// Package watch implements the live-subscription hub: observers register
// a callback channel and receive a signal whenever the report collection
// changes, mirroring a document store's push-based change feed.
package watch

import (
	"sync"

	"github.com/google/uuid"
)

// Hub fans out change signals to subscribers. Signals are coalesced: a
// subscriber that has not drained its channel gets at most one pending
// signal, which is enough because consumers re-read the full collection.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan struct{})}
}

// Subscribe registers an observer and returns its signal channel plus an
// unsubscribe func. The channel is closed on unsubscribe.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	id := uuid.NewString()
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Notify signals every subscriber that the collection changed. Never
// blocks: a subscriber with a signal already pending is skipped.
func (h *Hub) Notify() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of active subscribers (used by tests and the
// health endpoint).
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
