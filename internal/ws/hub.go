// Package ws contains the live tracking transport: the per-run observer
// registry (Hub) and the GPS streaming session handler.
package ws

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/schoolrun/bus-tracking/internal/api/metrics"
)

// Conn is the surface the hub needs from an observer connection.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks which live connections observe which run and fans broadcast
// payloads out to them. It is the only state shared across sessions; all
// membership changes and broadcast iteration happen under one mutex, so
// Join, Leave and Broadcast are atomic with respect to each other.
type Hub struct {
	mu        sync.Mutex
	observers map[string]map[Conn]struct{}
	log       zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		observers: make(map[string]map[Conn]struct{}),
		log:       log,
	}
}

// Join registers conn as an observer of runID. The run entry is created
// lazily on first join.
func (h *Hub) Join(runID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.observers[runID]
	if !ok {
		set = make(map[Conn]struct{})
		h.observers[runID] = set
	}
	if _, exists := set[conn]; !exists {
		set[conn] = struct{}{}
		metrics.ObserversConnected.Inc()
	}
}

// Leave deregisters conn. Idempotent: leaving twice, or leaving a run the
// connection never joined, is a no-op. The run entry is removed once its
// observer set is empty.
func (h *Hub) Leave(runID string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(runID, conn)
}

// Broadcast delivers payload to every observer of runID, including the
// sender. An observer whose send fails is treated as disconnected and removed
// as part of the same call; delivery to the remaining observers continues.
func (h *Hub) Broadcast(runID string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.observers[runID]
	if !ok {
		return
	}

	var dead []Conn
	for conn := range set {
		if err := conn.WriteJSON(payload); err != nil {
			h.log.Debug().Err(err).Str("run_id", runID).Msg("dropping dead observer")
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		h.removeLocked(runID, conn)
		_ = conn.Close()
	}

	metrics.BroadcastsTotal.Inc()
}

// ObserverCount returns the number of live observers of runID.
func (h *Hub) ObserverCount(runID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers[runID])
}

func (h *Hub) removeLocked(runID string, conn Conn) {
	set, ok := h.observers[runID]
	if !ok {
		return
	}
	if _, exists := set[conn]; !exists {
		return
	}
	delete(set, conn)
	metrics.ObserversConnected.Dec()
	if len(set) == 0 {
		delete(h.observers, runID)
	}
}
