// Package broadcast fans domain events out to live subscribers.
package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/ports"
)

// DefaultBufferSize is the number of undelivered events a subscriber may hold
// before further events are dropped for it.
const DefaultBufferSize = 64

var _ ports.Broadcaster = (*Hub)(nil)

type subscription struct {
	id      string
	ch      chan event.Event
	dropped atomic.Uint64
}

func (s *subscription) ID() string {
	return s.id
}

func (s *subscription) Events() <-chan event.Event {
	return s.ch
}

func (s *subscription) Dropped() uint64 {
	return s.dropped.Load()
}

// Hub delivers every published event to every registered subscriber without
// blocking. Each subscriber owns a bounded buffer; when it is full the event is
// dropped for that subscriber only and counted.
//
// Publishing the same event twice is harmless: an event whose sequence number
// is not newer than the last one published for its order is ignored. An
// order's entry is dropped once its terminal event is published; sequence
// numbers are global, so retiredSeq still catches a repeated terminal event.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]*subscription
	bufferSize int

	seqMu      sync.Mutex
	lastSeq    map[kernel.UUID]uint64
	retiredSeq uint64

	metrics ports.Metrics
	logger  *slog.Logger
}

func NewHub(bufferSize int, metrics ports.Metrics, logger *slog.Logger) *Hub {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subs:       make(map[string]*subscription),
		bufferSize: bufferSize,
		lastSeq:    make(map[kernel.UUID]uint64),
		metrics:    metrics,
		logger:     logger.With("component", "broadcast_hub"),
	}
}

func (h *Hub) Subscribe() ports.Subscription {
	sub := &subscription{
		id: kernel.NewUUID().String(),
		ch: make(chan event.Event, h.bufferSize),
	}

	h.mu.Lock()
	h.subs[sub.id] = sub
	count := len(h.subs)
	h.mu.Unlock()

	h.logger.Debug("subscriber added", "subscriber", sub.id, "subscribers", count)
	return sub
}

// Unsubscribe removes sub and closes its channel. Unknown or already removed
// subscriptions are ignored.
func (h *Hub) Unsubscribe(sub ports.Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	s, ok := h.subs[sub.ID()]
	if ok {
		delete(h.subs, sub.ID())
		close(s.ch)
	}
	count := len(h.subs)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("subscriber removed", "subscriber", sub.ID(), "subscribers", count, "dropped", s.Dropped())
	}
}

func (h *Hub) Publish(e event.Event) {
	if h.isDuplicate(e) {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.subs {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
			h.metrics.DeliveryDropped()
			h.logger.Debug("subscriber buffer full, event dropped",
				"subscriber", s.id, "event_type", string(e.Type()), "seq", e.Sequence())
		}
	}
}

// Reset discards every buffered event and forgets published sequence numbers.
// Subscriptions stay open.
func (h *Hub) Reset() {
	h.mu.Lock()
	for _, s := range h.subs {
		drain(s.ch)
	}
	h.mu.Unlock()

	h.seqMu.Lock()
	h.lastSeq = make(map[kernel.UUID]uint64)
	h.retiredSeq = 0
	h.seqMu.Unlock()

	h.logger.InfoContext(context.Background(), "broadcast hub reset")
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close removes every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.ch)
	}
}

func (h *Hub) isDuplicate(e event.Event) bool {
	if !e.HasOrder() || e.Sequence() == 0 {
		return false
	}

	h.seqMu.Lock()
	defer h.seqMu.Unlock()

	last, tracked := h.lastSeq[e.OrderID()]
	if !tracked {
		last = h.retiredSeq
	}
	if e.Sequence() <= last {
		return true
	}

	if e.Type().IsTerminal() {
		delete(h.lastSeq, e.OrderID())
		h.retiredSeq = max(h.retiredSeq, e.Sequence())
		return false
	}
	h.lastSeq[e.OrderID()] = e.Sequence()
	return false
}

func drain(ch chan event.Event) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
