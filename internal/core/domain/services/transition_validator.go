package services

import (
	"fmt"
	"strings"
	"time"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/pkg/errs"
)

// Proof is the opening of a commitment: the claimed value and its nonce.
type Proof struct {
	Value string
	Nonce string
}

// Evidence is the supporting data a transition request carries. Each
// transition reads only the fields it needs:
//   - approve: Proof
//   - begin_transit: Location (origin of the shipment)
//   - deliver: Location (the reading at delivery)
//   - pay: Payment
//   - cancel: Reason
type Evidence struct {
	Proof    *Proof
	Location *kernel.Location
	Payment  string
	Reason   string
}

// TransitionValidator decides whether a transition is legal for an order and,
// if so, applies it and returns the event that records it. It is the single
// place where transition guards live; both API requests and the tracking
// scheduler go through it.
//
// When Fire returns an error the order has not been changed. Callers that need
// the order and the event to be applied together should call Fire on a copy
// held under the order's lock, which is what ports.OrderStore.Apply provides.
type TransitionValidator struct {
	verifier CommitmentVerifier
}

func NewTransitionValidator(verifier CommitmentVerifier) TransitionValidator {
	return TransitionValidator{verifier: verifier}
}

// Created returns the contract_created event for a freshly built order.
func (v TransitionValidator) Created(o *order.Order) (event.Event, error) {
	if err := o.Validate(); err != nil {
		return event.Event{}, err
	}

	parties := o.Parties()
	payload := map[string]any{
		"status":      o.Status().String(),
		"supplierId":  parties.Supplier(),
		"buyerId":     parties.Buyer(),
		"quantity":    o.Terms().Quantity(),
		"destination": LocationPayload(o.Destination()),
	}
	if parties.Logistics() != "" {
		payload["logisticsId"] = parties.Logistics()
	}
	if c, ok := o.Terms().PriceCommitment(); ok {
		payload["priceCommitment"] = c.String()
	}
	if c, ok := o.Terms().QuantityCommitment(); ok {
		payload["quantityCommitment"] = c.String()
	}

	return event.NewEvent(o.ID(), event.ContractCreated, payload, o.CreatedAt())
}

// Fire checks the guards of transition t against o and the evidence, applies
// the transition and returns its event.
//
// The source status is checked first, so a repeated request is reported as
// errs.ErrAlreadyInTargetStatus even when it carries no evidence.
//
// Parameters:
//   - o: the order to mutate; callers pass a working copy
//   - t: any transition except TransitionCreate
//   - ev: the evidence t requires, see Evidence
//   - at: the transition time
//
// Returns:
//   - event.Event: the unsequenced event recording the transition
//   - error: errs.ErrAlreadyInTargetStatus, errs.ErrTransitionIsInvalid,
//     errs.ErrProofVerificationFailed or a validation error
//
// Example:
//
//	ev, err := validator.Fire(working, order.TransitionPay, services.Evidence{Payment: "wire:118"}, now)
func (v TransitionValidator) Fire(o *order.Order, t order.Transition, ev Evidence, at time.Time) (event.Event, error) {
	if err := o.Validate(); err != nil {
		return event.Event{}, err
	}

	switch t {
	case order.TransitionApprove:
		return v.approve(o, ev, at)
	case order.TransitionBeginTransit:
		return v.beginTransit(o, ev, at)
	case order.TransitionDeliver:
		return v.deliver(o, ev, at)
	case order.TransitionPay:
		return v.pay(o, ev, at)
	case order.TransitionCancel:
		return v.cancel(o, ev, at)
	default:
		return event.Event{}, errs.NewValueIsInvalidErrorWithCause("transition",
			fmt.Errorf("%q cannot be fired on an existing order", string(t)))
	}
}

// Track records a telemetry reading on an in-transit order. It does not change
// the status and produces a gps_update event.
func (v TransitionValidator) Track(o *order.Order, location kernel.Location, progress float64, at time.Time) (event.Event, error) {
	if err := o.Validate(); err != nil {
		return event.Event{}, err
	}

	if err := o.Track(location, progress, at); err != nil {
		return event.Event{}, err
	}

	return event.NewEvent(o.ID(), event.GPSUpdate, map[string]any{
		"status":      o.Status().String(),
		"phase":       event.PhaseInTransit,
		"location":    LocationPayload(location),
		"destination": LocationPayload(o.Destination()),
		"progress":    progress,
	}, o.UpdatedAt())
}

func (v TransitionValidator) approve(o *order.Order, ev Evidence, at time.Time) (event.Event, error) {
	if _, err := o.Status().Approve(); err != nil {
		return event.Event{}, err
	}

	if ev.Proof == nil {
		return event.Event{}, errs.NewValueIsRequiredError("proof")
	}

	commitment, ok := o.ApprovalCommitment()
	if !ok {
		return event.Event{}, errs.NewProofVerificationFailedErrorWithCause(o.ID().String(),
			fmt.Errorf("order has no commitment to verify against"))
	}

	if !v.verifier.Verify(ev.Proof.Value, ev.Proof.Nonce, commitment) {
		return event.Event{}, errs.NewProofVerificationFailedError(o.ID().String())
	}

	if err := o.Approve(at); err != nil {
		return event.Event{}, err
	}

	return event.NewEvent(o.ID(), event.ContractApproved, map[string]any{
		"status":     o.Status().String(),
		"commitment": commitment.String(),
	}, o.ApprovedAt())
}

func (v TransitionValidator) beginTransit(o *order.Order, ev Evidence, at time.Time) (event.Event, error) {
	if _, err := o.Status().BeginTransit(); err != nil {
		return event.Event{}, err
	}

	if ev.Location == nil {
		return event.Event{}, errs.NewValueIsRequiredError("origin")
	}

	if err := o.BeginTransit(*ev.Location, at); err != nil {
		return event.Event{}, err
	}

	return event.NewEvent(o.ID(), event.GPSUpdate, map[string]any{
		"status":      o.Status().String(),
		"phase":       event.PhaseTransitStarted,
		"location":    LocationPayload(*ev.Location),
		"destination": LocationPayload(o.Destination()),
		"progress":    order.ProgressMin,
	}, o.InTransitAt())
}

func (v TransitionValidator) deliver(o *order.Order, ev Evidence, at time.Time) (event.Event, error) {
	if _, err := o.Status().Deliver(); err != nil {
		return event.Event{}, err
	}

	if ev.Location == nil {
		return event.Event{}, errs.NewValueIsRequiredError("location")
	}

	if err := o.Deliver(*ev.Location, at); err != nil {
		return event.Event{}, err
	}

	return event.NewEvent(o.ID(), event.DeliveryConfirmed, map[string]any{
		"status":   o.Status().String(),
		"location": LocationPayload(*ev.Location),
	}, o.DeliveredAt())
}

func (v TransitionValidator) pay(o *order.Order, ev Evidence, at time.Time) (event.Event, error) {
	if _, err := o.Status().Pay(); err != nil {
		return event.Event{}, err
	}

	payment := strings.TrimSpace(ev.Payment)
	if payment == "" {
		return event.Event{}, errs.NewValueIsRequiredError("payment evidence")
	}

	if err := o.Pay(at); err != nil {
		return event.Event{}, err
	}

	return event.NewEvent(o.ID(), event.PaymentReleased, map[string]any{
		"status":   o.Status().String(),
		"evidence": payment,
	}, o.PaidAt())
}

func (v TransitionValidator) cancel(o *order.Order, ev Evidence, at time.Time) (event.Event, error) {
	previous := o.Status()

	if err := o.Cancel(ev.Reason, at); err != nil {
		return event.Event{}, err
	}

	return event.NewEvent(o.ID(), event.ContractCancelled, map[string]any{
		"status":         o.Status().String(),
		"previousStatus": previous.String(),
		"reason":         o.CancelReason(),
	}, o.CancelledAt())
}

// LocationPayload renders a location for event payloads.
func LocationPayload(l kernel.Location) map[string]any {
	return map[string]any{"lat": l.Latitude(), "lng": l.Longitude()}
}
