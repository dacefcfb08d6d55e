// Package hub fans committed changes out to in-process subscribers, typically the
// websocket streams of tracking views. It implements ports.AssignmentNotifier.
//
// Subscriptions are keyed by assignment, order or rider id. Position updates of a
// rider also reach the subscribers of the assignment (and its order) the rider
// currently holds, so a tracking page sees the courier move.
package hub

import (
	"context"
	"log/slog"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
)

// DefaultBuffer is the per-subscriber queue length. A subscriber that falls behind
// loses messages rather than slowing publishers down.
const DefaultBuffer = 16

type subscriber struct {
	ch chan Message
}

type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscriber]struct{}
	follow map[string][]string
	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		follow: make(map[string][]string),
		logger: logger.With("component", "change_hub"),
	}
}

// Subscribe registers interest in changes about id. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(id kernel.UUID) (<-chan Message, func()) {
	key := id.String()
	s := &subscriber{ch: make(chan Message, DefaultBuffer)}

	h.mu.Lock()
	if h.subs[key] == nil {
		h.subs[key] = make(map[*subscriber]struct{})
	}
	h.subs[key][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[key], s)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

func (h *Hub) AssignmentChanged(_ context.Context, change ports.AssignmentChange) error {
	h.Broadcast(NewAssignmentMessage(change))
	return nil
}

func (h *Hub) RiderPositionChanged(_ context.Context, change ports.RiderPositionChange) error {
	h.Broadcast(NewRiderPositionMessage(change))
	return nil
}

// Broadcast routes m to its subscribers. Used directly by the Postgres listener.
func (h *Hub) Broadcast(m Message) {
	var keys []string

	switch m.Type {
	case TypeAssignment:
		keys = []string{m.AssignmentID, m.OrderID}
		h.track(m)
	case TypeRiderPosition:
		h.mu.RLock()
		keys = append([]string{m.RiderID}, h.follow[m.RiderID]...)
		h.mu.RUnlock()
	default:
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, key := range keys {
		for s := range h.subs[key] {
			select {
			case s.ch <- m:
			default:
				h.logger.Debug("subscriber lagging, message dropped", "key", key, "type", m.Type)
			}
		}
	}
}

// track keeps the rider -> (assignment, order) mapping used to route positions.
func (h *Hub) track(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m.PreviousRiderID != "" {
		delete(h.follow, m.PreviousRiderID)
	}
	if m.RiderID == "" {
		return
	}
	if m.Terminal() {
		delete(h.follow, m.RiderID)
		return
	}
	h.follow[m.RiderID] = []string{m.AssignmentID, m.OrderID}
}
