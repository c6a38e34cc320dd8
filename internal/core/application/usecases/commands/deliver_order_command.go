package commands

import (
	"errors"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/guard"
)

var ErrDeliverOrderCommandIsNotConstructed = errors.New(
	"DeliverOrderCommand must be created via NewDeliverOrderCommand constructor",
)

// DeliverOrderCommand confirms delivery with the location reading taken at
// the hand-over.
type DeliverOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	location kernel.Location

	guard guard.ConstructorGuard
}

// NewDeliverOrderCommand creates a delivery confirmation at (lat, lng).
//
// Parameters:
//   - orderID: the order being delivered
//   - lat, lng: the hand-over position in degrees
//
// Returns:
//   - DeliverOrderCommand: the validated command
//   - error: the order id and coordinate errors joined
func NewDeliverOrderCommand(orderID kernel.UUID, lat, lng float64) (DeliverOrderCommand, error) {
	cmd := DeliverOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	location, locationErr := kernel.NewLocation(lat, lng)
	if err := errors.Join(orderID.Validate(), locationErr); err != nil {
		return DeliverOrderCommand{}, err
	}

	cmd.orderID = orderID
	cmd.location = location
	return cmd, nil
}

func (c DeliverOrderCommand) Validate() error {
	return c.guard.Validate(ErrDeliverOrderCommandIsNotConstructed)
}

func (c DeliverOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Location returns where delivery was confirmed.
func (c DeliverOrderCommand) Location() kernel.Location {
	return c.location
}
