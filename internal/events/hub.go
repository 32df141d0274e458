package events

import (
	"expvar"
	"sync"

	"github.com/rs/zerolog/log"
)

var metricPublishedTotal = expvar.NewInt("events_published_total")

// Hub is the per-table subscriber registry.
type Hub struct {
	mu      sync.Mutex
	max     int
	buffers map[string]*Buffer
}

func NewHub(max int) *Hub {
	return &Hub{max: max, buffers: map[string]*Buffer{}}
}

func (h *Hub) Buffer(tableID string) *Buffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok := h.buffers[tableID]
	if !ok {
		b = NewBuffer(tableID, h.max)
		h.buffers[tableID] = b
	}
	return b
}

func (h *Hub) Publish(tableID, event, session string, data any) {
	ev := h.Buffer(tableID).Append(event, session, data)
	metricPublishedTotal.Add(1)
	log.Debug().
		Str("table_id", tableID).
		Str("event", event).
		Str("event_id", ev.EventID).
		Str("session", session).
		Msg("event published")
}

func (h *Hub) Subscribe(tableID string) chan Event {
	return h.Buffer(tableID).Subscribe()
}

func (h *Hub) Unsubscribe(tableID string, ch chan Event) {
	h.Buffer(tableID).Unsubscribe(ch)
}

// Drop closes and forgets the buffer of an archived table.
func (h *Hub) Drop(tableID string) {
	h.mu.Lock()
	b, ok := h.buffers[tableID]
	delete(h.buffers, tableID)
	h.mu.Unlock()
	if ok {
		b.Close()
	}
}

func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, b := range h.buffers {
		b.Close()
		delete(h.buffers, id)
	}
}
