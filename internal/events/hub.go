package events

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer is the per-subscriber queue depth. A subscriber that
// falls this far behind is dropped.
const subscriberBuffer = 16

// Hub fans published events out to every current subscriber. It is handed
// to services as an explicit dependency at construction time.
type Hub struct {
	lg *zap.Logger

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription is one observer's connection to the hub. Messages arrive on C
// as pre-encoded JSON frames.
type Subscription struct {
	C   chan []byte
	hub *Hub
}

// NewHub creates an empty Hub.
func NewHub(lg *zap.Logger) *Hub {
	return &Hub{
		lg:   lg,
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a new observer. The caller must call Close on the
// returned Subscription when done.
func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{
		C:   make(chan []byte, subscriberBuffer),
		hub: h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.C)
		return sub
	}
	h.subs[sub] = struct{}{}
	return sub
}

// Close detaches the subscription from the hub.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.C)
	}
}

// Publish broadcasts an event to every current subscriber. It never blocks
// and never returns an error to the caller: an unmarshalable payload is
// logged and dropped, and a subscriber with a full queue is disconnected.
func (h *Hub) Publish(name string, payload any) {
	frame, err := json.Marshal(Event{Name: name, Payload: payload})
	if err != nil {
		h.lg.Error("drop event: encode failed",
			zap.String("event", name),
			zap.Error(err),
		)
		return
	}

	// Deliver while holding the read lock: every close of a subscriber
	// channel happens under the write lock, so a send here can never race a
	// concurrent Close. Sends are non-blocking, so the lock is held only for
	// the fan-out itself. Full subscribers are detached after release
	// because unsubscribe needs the write lock.
	h.mu.RLock()
	var full []*Subscription
	for sub := range h.subs {
		select {
		case sub.C <- frame:
		default:
			full = append(full, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range full {
		h.unsubscribe(sub)
	}
	if len(full) > 0 {
		h.lg.Warn("dropped slow subscribers",
			zap.String("event", name),
			zap.Int("count", len(full)),
		)
	}
}

// SubscriberCount reports how many observers are currently connected.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close disconnects every subscriber and rejects future ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.C)
	}
}
