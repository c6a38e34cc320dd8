// Package eventlog is the in-memory implementation of ports.EventLog.
package eventlog

import (
	"context"
	"slices"
	"sort"
	"sync"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/ports"
)

var _ ports.EventLog = (*Log)(nil)

// Log is an append-only slice of events with a per-order index. The sequence
// counter is allocated under the same lock as the append, so sequence order
// equals append order.
type Log struct {
	mu      sync.RWMutex
	events  []event.Event
	byOrder map[kernel.UUID][]int
	seq     uint64
}

// NewLog creates an empty log whose first event gets sequence 1.
func NewLog() *Log {
	return &Log{byOrder: make(map[kernel.UUID][]int)}
}

// Append assigns the next sequence number to e and stores it.
//
// Returns:
//   - event.Event: e carrying its sequence number
//   - error: validation error for an unconstructed event, or ctx.Err()
func (l *Log) Append(ctx context.Context, e event.Event) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if err := e.Validate(); err != nil {
		return event.Event{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	stored := e.WithSequence(l.seq)
	l.events = append(l.events, stored)
	if stored.HasOrder() {
		l.byOrder[stored.OrderID()] = append(l.byOrder[stored.OrderID()], len(l.events)-1)
	}
	return stored, nil
}

// List returns every event in sequence order.
func (l *Log) List(ctx context.Context) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.events), nil
}

func (l *Log) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.byOrder[orderID]
	result := make([]event.Event, 0, len(idx))
	for _, i := range idx {
		result = append(result, l.events[i])
	}
	return result, nil
}

// ListSince returns events with a sequence number greater than seq.
func (l *Log) ListSince(ctx context.Context, seq uint64) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	start := sort.Search(len(l.events), func(i int) bool { return l.events[i].Sequence() > seq })
	return slices.Clone(l.events[start:]), nil
}

// Reset drops every event and restarts sequence numbers at 1.
func (l *Log) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = nil
	l.byOrder = make(map[kernel.UUID][]int)
	l.seq = 0
	return nil
}
