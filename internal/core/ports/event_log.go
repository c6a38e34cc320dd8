package ports

import (
	"context"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
)

// EventLog is the append-only record of what happened. Sequence numbers are
// strictly increasing across all producers and start at 1 after a reset.
type EventLog interface {
	// Append assigns the next sequence number and returns the stored event.
	Append(ctx context.Context, e event.Event) (event.Event, error)

	List(ctx context.Context) ([]event.Event, error)

	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]event.Event, error)

	// ListSince returns the events with a sequence number greater than seq.
	ListSince(ctx context.Context, seq uint64) ([]event.Event, error)

	Reset(ctx context.Context) error
}
