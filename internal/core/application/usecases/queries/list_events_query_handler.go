package queries

import (
	"context"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/ports"
)

type ListEventsQueryHandler struct {
	events ports.EventLog
}

func NewListEventsQueryHandler(events ports.EventLog) ListEventsQueryHandler {
	return ListEventsQueryHandler{events: events}
}

// Handle returns the matching events in sequence order.
func (h ListEventsQueryHandler) Handle(ctx context.Context, query ListEventsQuery) ([]event.Event, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		events []event.Event
		err    error
	)
	orderID, byOrder := query.OrderID()
	switch {
	case byOrder:
		events, err = h.events.ListByOrder(ctx, orderID)
	case query.SinceSeq() > 0:
		events, err = h.events.ListSince(ctx, query.SinceSeq())
	default:
		events, err = h.events.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	if !byOrder || query.SinceSeq() == 0 {
		return events, nil
	}

	result := make([]event.Event, 0, len(events))
	for _, e := range events {
		if e.Sequence() > query.SinceSeq() {
			result = append(result, e)
		}
	}
	return result, nil
}
