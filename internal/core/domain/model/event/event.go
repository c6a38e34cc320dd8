// Package event defines the immutable domain events emitted for every accepted
// order transition and every tracking update.
package event

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/errs"
)

// Type tags the kind of fact an event records.
type Type string

// Event types, one per accepted transition plus gps_update for tracking.
// The values are the wire names used by the HTTP API and the ledger.
const (
	ContractCreated   Type = "contract_created"
	ContractApproved  Type = "contract_approved"
	GPSUpdate         Type = "gps_update"
	DeliveryConfirmed Type = "delivery_confirmed"
	PaymentReleased   Type = "payment_released"
	ContractCancelled Type = "contract_cancelled"
)

// Phases carried in the payload of gps_update events.
const (
	PhaseTransitStarted = "transit_started"
	PhaseInTransit      = "in_transit"
)

// Validate rejects any type not listed above.
func (t Type) Validate() error {
	switch t {
	case ContractCreated, ContractApproved, GPSUpdate, DeliveryConfirmed, PaymentReleased, ContractCancelled:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a known event type", string(t)))
	}
}

// IsTerminal reports whether the event closes its order's lifecycle. No
// further events follow a terminal event for the same order.
func (t Type) IsTerminal() bool {
	return t == PaymentReleased || t == ContractCancelled
}

// ErrEventIsNotConstructed is returned by Validate on the zero Event.
var ErrEventIsNotConstructed = errors.New("event must be created via NewEvent constructor")

// Event is an immutable fact. The sequence number is zero until the event log
// assigns one on append.
type Event struct {
	id        kernel.UUID
	seq       uint64
	orderID   kernel.UUID
	typ       Type
	payload   map[string]any
	createdAt time.Time
}

// NewEvent creates an event with a fresh time-ordered id. A zero orderID marks a
// system-wide event. The payload map is copied.
//
// Parameters:
//   - orderID: the order the event belongs to, or the zero UUID
//   - typ: a known event type
//   - payload: event specific fields, may be nil
//   - createdAt: required
//
// Returns:
//   - Event: the event with sequence 0
//   - error: validation error for an unknown type or a zero createdAt
//
// Example:
//
//	ev, err := event.NewEvent(o.ID(), event.ContractApproved, nil, now)
func NewEvent(orderID kernel.UUID, typ Type, payload map[string]any, createdAt time.Time) (Event, error) {
	if err := typ.Validate(); err != nil {
		return Event{}, err
	}
	if createdAt.IsZero() {
		return Event{}, errs.NewValueIsRequiredError("createdAt")
	}

	return Event{
		id:        kernel.NewTimeOrderedUUID(),
		orderID:   orderID,
		typ:       typ,
		payload:   maps.Clone(payload),
		createdAt: createdAt,
	}, nil
}

func (e Event) Validate() error {
	if e.id.Validate() != nil {
		return ErrEventIsNotConstructed
	}
	return nil
}

// WithSequence returns a copy of e carrying seq.
func (e Event) WithSequence(seq uint64) Event {
	e.seq = seq
	return e
}

func (e Event) ID() kernel.UUID {
	return e.id
}

func (e Event) Sequence() uint64 {
	return e.seq
}

func (e Event) OrderID() kernel.UUID {
	return e.orderID
}

// HasOrder is false for system-wide events.
func (e Event) HasOrder() bool {
	return e.orderID.Validate() == nil
}

func (e Event) Type() Type {
	return e.typ
}

// Payload returns a shallow copy of the payload map.
func (e Event) Payload() map[string]any {
	return maps.Clone(e.payload)
}

func (e Event) CreatedAt() time.Time {
	return e.createdAt
}

// IsTransition reports whether the event records a status change. The
// transit_started gps_update is the event of the begin-transit transition.
func (e Event) IsTransition() bool {
	if e.typ != GPSUpdate {
		return true
	}
	return e.payload["phase"] == PhaseTransitStarted
}
