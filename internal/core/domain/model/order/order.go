package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/errs"
)

// ErrOrderIsNotConstructed is returned when an Order was not created through NewOrder.
var ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder constructor")

const (
	ProgressMin = 0.0
	ProgressMax = 100.0
)

// Order is the aggregate root of a purchase contract between a supplier and a
// buyer. It owns the status and the lifecycle timestamps; callers change it
// only through the transition methods, which either apply completely or
// return an error leaving the order untouched.
//
// Invariants:
//   - status only moves forward along the transition graph of Status
//   - approvedAt, inTransitAt, deliveredAt, paidAt and cancelledAt are set
//     exactly once, when the matching status is reached
//   - timestamps never decrease
type Order struct {
	id          kernel.UUID
	parties     Parties
	terms       Terms
	destination kernel.Location

	// currentLocation and progress are nil until the shipment starts.
	currentLocation *kernel.Location
	progress        *float64

	status       Status
	cancelReason string

	createdAt   time.Time
	approvedAt  time.Time
	inTransitAt time.Time
	deliveredAt time.Time
	paidAt      time.Time
	cancelledAt time.Time
	updatedAt   time.Time

	isConstructed bool
}

// NewOrder creates an order in the Created status. All invalid arguments are
// reported together.
//
// Example:
//
//	parties, _ := order.NewParties("supplier-1", "buyer-1", "")
//	terms, _ := order.NewTerms(100, "enc:...", priceCommitment, kernel.Commitment{})
//	destination, _ := kernel.NewLocation(52.52, 13.40)
//	o, err := order.NewOrder(kernel.NewUUID(), parties, terms, destination, time.Now())
func NewOrder(
	id kernel.UUID,
	parties Parties,
	terms Terms,
	destination kernel.Location,
	createdAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        Created,
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		parties.Validate(),
		terms.Validate(),
		destination.Validate(),
		o.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	o.parties = parties
	o.terms = terms
	o.destination = destination

	return o, nil
}

// Validate reports whether the order was built by NewOrder.
//
// Returns:
//   - error: ErrOrderIsNotConstructed for nil or zero-value orders, nil otherwise
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

// Clone returns a deep copy. The store hands out clones so callers can never
// mutate the authoritative record, and OrderStore.Apply runs mutations on a
// clone so a failed transition leaves the stored order untouched.
//
// Example:
//
//	draft := stored.Clone()
//	if err := draft.Pay(now); err != nil {
//	    return err // stored is unchanged
//	}
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}

	c := *o
	if o.currentLocation != nil {
		loc := *o.currentLocation
		c.currentLocation = &loc
	}
	if o.progress != nil {
		p := *o.progress
		c.progress = &p
	}
	return &c
}

// IsEqual compares orders by identity. Two snapshots of the same order in
// different statuses are equal.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID {
	return o.id
}

// Parties returns the supplier, buyer and optional logistics provider.
func (o *Order) Parties() Parties {
	return o.parties
}

// Terms returns the quantity, encrypted price and commitments.
func (o *Order) Terms() Terms {
	return o.terms
}

// Destination returns the delivery location agreed at creation.
func (o *Order) Destination() kernel.Location {
	return o.destination
}

// CurrentLocation returns the last known position of the shipment.
func (o *Order) CurrentLocation() (kernel.Location, bool) {
	if o.currentLocation == nil {
		return kernel.Location{}, false
	}
	return *o.currentLocation, true
}

// Progress returns the shipment progress in percent.
func (o *Order) Progress() (float64, bool) {
	if o.progress == nil {
		return 0, false
	}
	return *o.progress, true
}

// Status returns the current status of the order.
func (o *Order) Status() Status {
	return o.status
}

// CancelReason returns the reason given on cancellation, or "".
func (o *Order) CancelReason() string {
	return o.cancelReason
}

// CreatedAt returns the creation time. It is always set.
func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

// ApprovedAt returns the approval time, or the zero time before approval.
// The same holds for the other lifecycle timestamps below.
func (o *Order) ApprovedAt() time.Time {
	return o.approvedAt
}

func (o *Order) InTransitAt() time.Time {
	return o.inTransitAt
}

func (o *Order) DeliveredAt() time.Time {
	return o.deliveredAt
}

func (o *Order) PaidAt() time.Time {
	return o.paidAt
}

func (o *Order) CancelledAt() time.Time {
	return o.cancelledAt
}

// UpdatedAt is the time of the latest transition or telemetry update.
func (o *Order) UpdatedAt() time.Time {
	return o.updatedAt
}

// ApprovalCommitment returns the commitment an approval proof is checked
// against: the price commitment, or the quantity commitment when the order has
// no price commitment.
func (o *Order) ApprovalCommitment() (kernel.Commitment, bool) {
	if c, ok := o.terms.PriceCommitment(); ok {
		return c, true
	}
	return o.terms.QuantityCommitment()
}

// InvolvesParty reports whether partyID holds role on this order.
//
// Parameters:
//   - role: the role to check, RoleSupplier, RoleBuyer or RoleLogistics
//   - partyID: the party identifier from the directory
//
// Returns:
//   - bool: false for an empty partyID or an unknown role
func (o *Order) InvolvesParty(role Role, partyID string) bool {
	return o.parties.Involves(role, partyID)
}

// Approve moves a Created order to Approved.
//
// This method enforces the following business rules:
//   - The order must be in Created status
//   - Proof checking happens in the transition validator before Approve is called
//   - approvedAt is set once and never before the latest recorded timestamp
//
// Parameters:
//   - at: the approval time
//
// Returns:
//   - nil on success
//   - errs.AlreadyInTargetStatusError or errs.TransitionIsInvalidError otherwise
//
// Example:
//
//	if err := o.Approve(clock.Now()); err != nil {
//	    return err
//	}
func (o *Order) Approve(at time.Time) error {
	next, err := o.status.Approve()
	if err != nil {
		return err
	}

	o.status = next
	o.approvedAt = o.stamp(at)
	return nil
}

// BeginTransit starts the shipment at origin with zero progress.
//
// Parameters:
//   - origin: the shipment's starting point, usually the supplier's location
//   - at: the time the shipment started
//
// Returns:
//   - nil on success; CurrentLocation is origin and Progress is 0
//   - validation error for an unconstructed origin
//   - transition error unless the order is Approved
func (o *Order) BeginTransit(origin kernel.Location, at time.Time) error {
	if err := origin.Validate(); err != nil {
		return err
	}

	next, err := o.status.BeginTransit()
	if err != nil {
		return err
	}

	o.status = next
	o.setPosition(origin, ProgressMin)
	o.inTransitAt = o.stamp(at)
	return nil
}

// Track records a telemetry reading. It never changes the status and is only
// accepted while the order is in transit.
func (o *Order) Track(location kernel.Location, progress float64, at time.Time) error {
	if o.status != InTransit {
		return errs.NewTransitionIsInvalidError("track", o.status.String())
	}

	if err := errors.Join(location.Validate(), validateProgress(progress)); err != nil {
		return err
	}

	o.setPosition(location, progress)
	o.stamp(at)
	return nil
}

// Deliver confirms delivery at location and sets progress to 100%.
//
// This method enforces the following business rules:
//   - The order must be Approved or InTransit
//   - A location reading is required
//
// Parameters:
//   - location: where delivery was confirmed
//   - at: the delivery time
//
// Returns:
//   - nil on success
//   - errs.ValueIsRequiredError for a missing location
//   - transition error for any other source status
func (o *Order) Deliver(location kernel.Location, at time.Time) error {
	next, err := o.status.Deliver()
	if err != nil {
		return err
	}

	if err = location.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("location", err)
	}

	o.status = next
	o.setPosition(location, ProgressMax)
	o.deliveredAt = o.stamp(at)
	return nil
}

// Pay releases the payment of a Delivered order. Paid is a final status.
//
// Returns:
//   - nil on success
//   - errs.AlreadyInTargetStatusError when already paid
//   - errs.TransitionIsInvalidError from any other status
func (o *Order) Pay(at time.Time) error {
	next, err := o.status.Pay()
	if err != nil {
		return err
	}

	o.status = next
	o.paidAt = o.stamp(at)
	return nil
}

// Cancel aborts the contract with an optional reason.
//
// This method enforces the following business rules:
//   - Any status before Paid can be cancelled
//   - Cancelling twice reports errs.AlreadyInTargetStatusError
//   - A paid order cannot be cancelled
//
// Example:
//
//	err := o.Cancel("buyer withdrew", time.Now())
func (o *Order) Cancel(reason string, at time.Time) error {
	next, err := o.status.Cancel()
	if err != nil {
		return err
	}

	o.status = next
	o.cancelReason = strings.TrimSpace(reason)
	o.cancelledAt = o.stamp(at)
	return nil
}

// setID validates and sets the order's identifier during construction.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setCreatedAt sets the creation time. This is a private method used only during construction.
func (o *Order) setCreatedAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("createdAt")
	}
	o.createdAt = at
	o.updatedAt = at
	return nil
}

// setPosition records a shipment reading.
func (o *Order) setPosition(location kernel.Location, progress float64) {
	o.currentLocation = &location
	o.progress = &progress
}

// stamp returns at, or the latest timestamp already recorded if at is earlier,
// and records it as the update time.
func (o *Order) stamp(at time.Time) time.Time {
	if at.Before(o.updatedAt) {
		at = o.updatedAt
	}
	o.updatedAt = at
	return at
}

func validateProgress(progress float64) error {
	if progress < ProgressMin || progress > ProgressMax {
		return errs.NewValueIsOutOfRangeErrorWithCause("progress", progress, ProgressMin, ProgressMax,
			fmt.Errorf("progress must be a percentage"))
	}
	return nil
}
