// Package bridge implements the control channel between the gateway and the
// foreground pages it serves.
//
// Pages subscribe for notifications (delivered over SSE by the server
// package); the sync coordinator broadcasts a SYNC_SUCCESS notice whenever a
// queued mutation replays, so every open page can reconcile its UI.
package bridge

import (
	"sync"

	"github.com/google/uuid"

	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/internal/ports"
)

// subscriberBuffer bounds the per-page notice queue. A page that stops
// reading loses notices rather than blocking replay.
const subscriberBuffer = 16

// Hub fans sync notices out to every subscribed page.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]chan domain.SyncNotice
	logger ports.Logger
}

// NewHub creates an empty hub.
func NewHub(logger ports.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]chan domain.SyncNotice),
		logger: logger,
	}
}

// Subscribe registers a page and returns its id and notice channel.
func (h *Hub) Subscribe() (string, <-chan domain.SyncNotice) {
	id := uuid.NewString()
	ch := make(chan domain.SyncNotice, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	h.logger.Debug("page subscribed", ports.String("subscriber", id))
	return id, ch
}

// Unsubscribe removes a page and closes its channel.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if ok {
		close(ch)
		h.logger.Debug("page unsubscribed", ports.String("subscriber", id))
	}
}

// Broadcast delivers the notice to every subscriber. Delivery is
// best-effort: a full subscriber buffer drops the notice for that page.
func (h *Hub) Broadcast(n domain.SyncNotice) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.subs {
		select {
		case ch <- n:
		default:
			h.logger.Warn("notice dropped for slow subscriber",
				ports.String("subscriber", id),
			)
		}
	}
}

// SubscriberCount returns the number of registered pages.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
