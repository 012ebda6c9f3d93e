// Package realtime delivers change notifications to interested observers.
// Services publish an event after every successful write; subscribers receive
// the events for their user regardless of the transport that carries them.
package realtime

import "sync"

// Event describes one data change.
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"` // insert, update, delete
	ID     uint   `json:"id,omitempty"`
}

// Actions.
const (
	ActionInsert = "insert"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Hub fans change events out to per-user subscribers. Delivery is best-effort:
// a subscriber whose buffer is full misses the event rather than blocking the
// write path.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[uint]map[int]chan Event
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[int]chan Event)}
}

// Subscribe registers an observer for the given user's events and returns the
// event channel together with an unsubscribe function.
func (h *Hub) Subscribe(userID uint) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan Event, 16)

	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Event)
	}
	h.subs[userID][id] = ch

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if chans, ok := h.subs[userID]; ok {
			if c, ok := chans[id]; ok {
				delete(chans, id)
				close(c)
			}
			if len(chans) == 0 {
				delete(h.subs, userID)
			}
		}
	}

	return ch, unsubscribe
}

// Publish delivers an event to all of the user's subscribers.
func (h *Hub) Publish(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
