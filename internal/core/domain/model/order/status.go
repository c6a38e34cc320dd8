package order

import (
	"fmt"
	"slices"
	"strings"

	"supplychain/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
// It implements the contract state machine; every transition method returns
// the next status or a typed rejection and never mutates the receiver.
//
// State transitions:
//
//	Created ──> Approved ──> InTransit ──> Delivered ──> Paid
//	   │           │  └──────────────────────^  │
//	   └───────────┴─────────┴──────────────────┴──> Cancelled
//
// The forward statuses are ordered: a status is "at or beyond" another when its
// numeric value is greater or equal. Cancelled sits outside that order.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) catches uninitialized Status values.
	Unknown Status = iota

	// Created is the initial status of a new contract.
	// The contract waits for the buyer to approve it with a commitment proof.
	Created

	// Approved means the commitment proof was verified.
	// The tracking scheduler starts the shipment on its next tick.
	Approved

	// InTransit means the shipment is moving and reports telemetry.
	InTransit

	// Delivered means delivery was confirmed at a location.
	// Payment can be released from here.
	Delivered

	// Paid is the final successful status. No transition leaves it.
	Paid

	// Cancelled is the final status of an aborted contract.
	Cancelled
)

// Transition names a request to move an order between statuses.
// The names appear in logs, metrics labels and ledger records.
type Transition string

const (
	TransitionCreate       Transition = "create"
	TransitionApprove      Transition = "approve"
	TransitionBeginTransit Transition = "begin_transit"
	TransitionDeliver      Transition = "deliver"
	TransitionPay          Transition = "pay"
	TransitionCancel       Transition = "cancel"
)

// getStatusStrings returns the wire form of every status, Unknown included.
func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:   "unknown",
		Created:   "created",
		Approved:  "approved",
		InTransit: "in_transit",
		Delivered: "delivered",
		Paid:      "paid",
		Cancelled: "cancelled",
	}
}

// ParseStatus converts the wire form of a status into a Status.
// Matching ignores case and surrounding whitespace; "unknown" is rejected.
//
// Parameters:
//   - s: the wire form, for example "in_transit"
//
// Returns:
//   - Status: the parsed status
//   - error: errs.ValueIsInvalidError when s names no valid status
//
// Example:
//
//	status, err := order.ParseStatus(c.QueryParam("status"))
//	if err != nil {
//	    return err
//	}
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for status, str := range getStatusStrings() {
		if status != Unknown && str == normalized {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks that the Status is one of the defined lifecycle states.
//
// Returns:
//   - nil for Created through Cancelled
//   - errs.ValueIsInvalidError for Unknown and any out-of-range value
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the wire form of the status and implements fmt.Stringer.
// It is safe to call on invalid values, which render as "unknown".
//
// Example:
//
//	fmt.Println(order.InTransit) // Output: in_transit
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no further transition can fire.
func (s Status) IsTerminal() bool {
	return s == Paid || s == Cancelled
}

// IsTrackable reports whether the scheduler keeps a tracking session for the status.
func (s Status) IsTrackable() bool {
	return s == Approved || s == InTransit
}

// Approve returns the status after an approval.
//
// Valid source statuses:
//   - Created
//
// Returns:
//   - Status: Approved
//   - error: errs.AlreadyInTargetStatusError from Approved or any later
//     forward status, errs.TransitionIsInvalidError from Cancelled
//
// Example:
//
//	next, err := order.Created.Approve() // next == order.Approved
func (s Status) Approve() (Status, error) {
	return s.advance(TransitionApprove, Approved, Created)
}

// BeginTransit returns the status after the scheduler starts the shipment.
//
// Valid source statuses:
//   - Approved
//
// Returns:
//   - Status: InTransit
//   - error: errs.TransitionIsInvalidError from Created or Cancelled,
//     errs.AlreadyInTargetStatusError from InTransit or later
func (s Status) BeginTransit() (Status, error) {
	return s.advance(TransitionBeginTransit, InTransit, Approved)
}

// Deliver returns the status after a confirmed delivery.
//
// Valid source statuses:
//   - Approved (manual delivery before the scheduler starts the shipment)
//   - InTransit
//
// Returns:
//   - Status: Delivered
//   - error: errs.TransitionIsInvalidError from Created or Cancelled,
//     errs.AlreadyInTargetStatusError from Delivered or Paid
func (s Status) Deliver() (Status, error) {
	return s.advance(TransitionDeliver, Delivered, Approved, InTransit)
}

// Pay returns the status after the payment is released.
//
// Valid source statuses:
//   - Delivered
//
// Returns:
//   - Status: Paid
//   - error: errs.AlreadyInTargetStatusError from Paid, errs.TransitionIsInvalidError otherwise
func (s Status) Pay() (Status, error) {
	return s.advance(TransitionPay, Paid, Delivered)
}

// Cancel returns the status after an administrative cancellation.
//
// Valid source statuses:
//   - Created, Approved, InTransit, Delivered
//
// Invalid source statuses:
//   - Cancelled (errs.AlreadyInTargetStatusError, the request is a duplicate)
//   - Paid (errs.TransitionIsInvalidError, the contract is settled)
//   - Unknown (errs.TransitionIsInvalidError)
//
// Example:
//
//	if _, err := o.Status().Cancel(); errors.Is(err, errs.ErrAlreadyInTargetStatus) {
//	    // already cancelled
//	}
func (s Status) Cancel() (Status, error) {
	switch {
	case s == Cancelled:
		return Unknown, errs.NewAlreadyInTargetStatusError(string(TransitionCancel), s.String())
	case s.Validate() != nil || s.IsTerminal():
		return Unknown, errs.NewTransitionIsInvalidError(string(TransitionCancel), s.String())
	}
	return Cancelled, nil
}

// advance moves to target when s is one of allowed. Otherwise a status at or
// beyond target is a duplicate request and anything else is an illegal jump.
func (s Status) advance(t Transition, target Status, allowed ...Status) (Status, error) {
	if slices.Contains(allowed, s) {
		return target, nil
	}
	if s != Cancelled && s >= target {
		return Unknown, errs.NewAlreadyInTargetStatusError(string(t), s.String())
	}
	return Unknown, errs.NewTransitionIsInvalidError(string(t), s.String())
}
