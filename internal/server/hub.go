package server

import (
	"sync"
	"time"

	"github.com/penwyp/go-eld-planner/internal/util"
)

const subscriberBuffer = 16

// Message types pushed to dashboard clients
const (
	MessageHello        = "hello"
	MessageTripsUpdated = "trips_updated"
)

// Message is one websocket notification
type Message struct {
	Type     string    `json:"type"`
	Trips    int       `json:"trips"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Hub fans notifications out to websocket subscribers. A subscriber whose
// buffer is full misses the message rather than blocking the others.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
	dropped     int64
	closed      bool
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan Message]struct{})}
}

// Subscribe returns a buffered channel of messages and a function that
// unsubscribes and closes it.
func (h *Hub) Subscribe() (<-chan Message, func()) {
	ch := make(chan Message, subscriberBuffer)

	h.mu.Lock()
	if h.closed {
		close(ch)
		h.mu.Unlock()
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[ch]; ok {
				delete(h.subscribers, ch)
				close(ch)
			}
		})
	}
}

// Broadcast sends msg to every subscriber without blocking
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			h.dropped++
			util.LogDebugf("hub: dropped %s for slow subscriber (total dropped: %d)", msg.Type, h.dropped)
		}
	}
}

// Subscribers is the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns the total number of messages dropped for slow subscribers
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Close closes every subscriber channel; later subscribers get a closed channel
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = make(map[chan Message]struct{})
	h.closed = true
}
