package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// EventAttendanceUpdated is published after a scan or a WFH change.
const EventAttendanceUpdated = "attendance.updated"

// Event is one message on an employee's attendance stream.
type Event struct {
	EmployeeID string
	Name       string
	Data       any
}

// Hub fans events out to subscribers of an employee's stream.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	bufferSize  int
	closed      bool
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
		bufferSize:  10,
	}
}

// Subscribe registers a listener for employeeID. The returned cleanup
// closes the channel and must be called exactly once.
func (h *Hub) Subscribe(employeeID string) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.bufferSize)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	if h.subscribers[employeeID] == nil {
		h.subscribers[employeeID] = make(map[chan Event]struct{})
	}
	h.subscribers[employeeID][ch] = struct{}{}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subscribers[employeeID][ch]; !ok {
				// already closed by Close
				return
			}
			delete(h.subscribers[employeeID], ch)
			close(ch)
			if len(h.subscribers[employeeID]) == 0 {
				delete(h.subscribers, employeeID)
			}
		})
	}

	return ch, cleanup
}

// Publish delivers ev to every subscriber of ev.EmployeeID. Slow
// subscribers with a full buffer miss the event.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[ev.EmployeeID] {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close closes every subscriber channel so open streams return. Subscribers
// arriving afterwards get an already closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for employeeID, chans := range h.subscribers {
		for ch := range chans {
			close(ch)
		}
		delete(h.subscribers, employeeID)
	}
}

func (h *Hub) SubscriberCount(employeeID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[employeeID])
}

// Write encodes ev in text/event-stream framing.
func Write(w io.Writer, ev Event) error {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, payload)
	return err
}
