package queries

import (
	"errors"
	"strings"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/errs"
	"supplychain/internal/pkg/guard"
)

var ErrListEventsQueryIsNotConstructed = errors.New(
	"ListEventsQuery must be created via NewListEventsQuery constructor",
)

// EventFilter narrows ListEvents. An empty OrderID matches every order;
// SinceSeq returns only events with a greater sequence number, which lets a
// reconnecting observer replay what it missed.
type EventFilter struct {
	OrderID  string
	SinceSeq uint64
}

type ListEventsQuery struct {
	orderID  kernel.UUID
	hasOrder bool
	sinceSeq uint64

	guard guard.ConstructorGuard
}

func NewListEventsQuery(filter EventFilter) (ListEventsQuery, error) {
	q := ListEventsQuery{
		sinceSeq: filter.SinceSeq,
		guard:    guard.NewConstructorGuard(),
	}

	if id := strings.TrimSpace(filter.OrderID); id != "" {
		orderID, err := kernel.UUIDFromString(id)
		if err != nil {
			return ListEventsQuery{}, errs.NewValueIsInvalidErrorWithCause("orderId", err)
		}
		q.orderID = orderID
		q.hasOrder = true
	}

	return q, nil
}

func (q ListEventsQuery) Validate() error {
	return q.guard.Validate(ErrListEventsQueryIsNotConstructed)
}

func (q ListEventsQuery) OrderID() (kernel.UUID, bool) {
	return q.orderID, q.hasOrder
}

func (q ListEventsQuery) SinceSeq() uint64 {
	return q.sinceSeq
}
