// Package shipment models the scheduler's private tracking sessions, which
// simulate a shipment moving in a straight line from origin to destination.
package shipment

import (
	"errors"
	"fmt"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/errs"
)

// ErrSessionIsNotConstructed is returned by Validate on a nil or zero-value Session.
var ErrSessionIsNotConstructed = errors.New("session must be created via NewSession constructor")

// Session tracks one order from origin to destination in totalSteps equal steps.
// It is owned by a single scheduler goroutine and is not safe for concurrent use.
type Session struct {
	orderID     kernel.UUID
	origin      kernel.Location
	destination kernel.Location
	step        int
	totalSteps  int
	startedAt   time.Time
}

// NewSession starts a session at step 0, positioned at origin.
//
// Parameters:
//   - orderID: the tracked order
//   - origin: the supplier's location
//   - destination: the order's delivery location
//   - totalSteps: number of ticks to reach the destination, at least 1
//   - startedAt: the time the shipment began transit
//
// Returns:
//   - *Session: the new session
//   - error: every invalid argument joined
//
// Example:
//
//	sess, err := shipment.NewSession(o.ID(), origin, o.Destination(), 10, now)
//	loc, progress, err := sess.Advance() // progress == 10
func NewSession(
	orderID kernel.UUID,
	origin, destination kernel.Location,
	totalSteps int,
	startedAt time.Time,
) (*Session, error) {
	if err := errors.Join(
		orderID.Validate(),
		origin.Validate(),
		destination.Validate(),
		validateTotalSteps(totalSteps),
	); err != nil {
		return nil, err
	}

	return &Session{
		orderID:     orderID,
		origin:      origin,
		destination: destination,
		totalSteps:  totalSteps,
		startedAt:   startedAt,
	}, nil
}

func (s *Session) Validate() error {
	if s == nil || s.totalSteps == 0 {
		return ErrSessionIsNotConstructed
	}
	return nil
}

func (s *Session) OrderID() kernel.UUID {
	return s.orderID
}

func (s *Session) Origin() kernel.Location {
	return s.origin
}

func (s *Session) Destination() kernel.Location {
	return s.destination
}

func (s *Session) Step() int {
	return s.step
}

func (s *Session) TotalSteps() int {
	return s.totalSteps
}

// StartedAt returns the time the shipment began transit.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Progress is step/totalSteps as a percentage.
func (s *Session) Progress() float64 {
	return float64(s.step) / float64(s.totalSteps) * 100
}

// IsComplete reports whether the shipment reached its destination.
func (s *Session) IsComplete() bool {
	return s.step >= s.totalSteps
}

// CurrentLocation interpolates linearly between origin and destination.
func (s *Session) CurrentLocation() (kernel.Location, error) {
	return s.origin.Interpolate(s.destination, float64(s.step)/float64(s.totalSteps))
}

// Advance moves one step forward and returns the new position and progress.
// Advancing a complete session keeps it at the destination.
func (s *Session) Advance() (kernel.Location, float64, error) {
	if err := s.Validate(); err != nil {
		return kernel.Location{}, 0, err
	}

	if s.step < s.totalSteps {
		s.step++
	}

	loc, err := s.CurrentLocation()
	if err != nil {
		return kernel.Location{}, 0, err
	}
	return loc, s.Progress(), nil
}

func validateTotalSteps(totalSteps int) error {
	if totalSteps < 1 {
		return errs.NewValueIsInvalidErrorWithCause("totalSteps", fmt.Errorf("%d is less than 1", totalSteps))
	}
	return nil
}
