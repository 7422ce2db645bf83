// Package fanout delivers committed order events to connected parties.
//
// The Hub keeps one bounded channel per subscription. Delivery never blocks
// the relay: when a subscriber is slow and its buffer is full the event is
// dropped for that subscriber only, which makes in-process delivery at most
// once. Parties that need a complete history read it from the order history
// query.
package fanout

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 32

// Subscription receives events addressed to one party.
type Subscription struct {
	id        uint64
	partyID   kernel.UUID
	events    chan order.Event
	closeOnce sync.Once
}

// Events is closed when the subscription is cancelled.
func (s *Subscription) Events() <-chan order.Event {
	return s.events
}

func (s *Subscription) PartyID() kernel.UUID {
	return s.partyID
}

func (s *Subscription) close() {
	s.closeOnce.Do(func() { close(s.events) })
}

// Hub is safe for concurrent use.
type Hub struct {
	mu      sync.RWMutex
	nextID  uint64
	subs    map[kernel.UUID]map[uint64]*Subscription
	buffer  int
	logger  *slog.Logger
	dropped atomic.Uint64
	closed  bool
}

func NewHub(buffer int, logger *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[kernel.UUID]map[uint64]*Subscription),
		buffer: buffer,
		logger: logger.With("component", "fanout_hub"),
	}
}

// Subscribe registers a new stream for partyID. A party may hold several
// subscriptions, one per open connection.
func (h *Hub) Subscribe(partyID kernel.UUID) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		id:      h.nextID,
		partyID: partyID,
		events:  make(chan order.Event, h.buffer),
	}
	if h.closed {
		sub.close()
		return sub
	}
	byParty, ok := h.subs[partyID]
	if !ok {
		byParty = make(map[uint64]*Subscription)
		h.subs[partyID] = byParty
	}
	byParty[sub.id] = sub
	return sub
}

// Unsubscribe removes the subscription and closes its channel. Calling it
// twice is harmless.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if byParty, ok := h.subs[sub.partyID]; ok {
		delete(byParty, sub.id)
		if len(byParty) == 0 {
			delete(h.subs, sub.partyID)
		}
	}
	sub.close()
}

// OnOrderEvent hands the event to every subscription of every recipient.
// It never fails: a full buffer drops the event for that subscription.
func (h *Hub) OnOrderEvent(ctx context.Context, event order.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, recipient := range event.Recipients {
		for _, sub := range h.subs[recipient] {
			select {
			case sub.events <- event:
			default:
				h.dropped.Add(1)
				h.logger.WarnContext(ctx, "subscriber buffer full, event dropped",
					"party_id", recipient.String(),
					"event_id", event.ID.String(),
				)
			}
		}
	}
	return nil
}

// Subscribers counts open subscriptions of partyID.
func (h *Hub) Subscribers(partyID kernel.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[partyID])
}

// Dropped counts deliveries skipped because a buffer was full.
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close ends every open subscription so streaming handlers return. Later
// subscriptions are closed immediately.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for partyID, byParty := range h.subs {
		for _, sub := range byParty {
			sub.close()
		}
		delete(h.subs, partyID)
	}
}
