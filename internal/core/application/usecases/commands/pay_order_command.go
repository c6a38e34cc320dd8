package commands

import (
	"errors"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/guard"
)

var ErrPayOrderCommandIsNotConstructed = errors.New(
	"PayOrderCommand must be created via NewPayOrderCommand constructor",
)

// PayOrderCommand releases payment for a delivered order. Evidence is an
// opaque payment reference such as a transfer id.
type PayOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	evidence string

	guard guard.ConstructorGuard
}

// NewPayOrderCommand creates a payment release request.
// Validates that the order id is set and evidence is not blank.
func NewPayOrderCommand(orderID kernel.UUID, evidence string) (PayOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return PayOrderCommand{}, err
	}

	return PayOrderCommand{
		orderID:  orderID,
		evidence: evidence,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c PayOrderCommand) Validate() error {
	return c.guard.Validate(ErrPayOrderCommandIsNotConstructed)
}

func (c PayOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Evidence returns the payment reference recorded in the payment_released event.
func (c PayOrderCommand) Evidence() string {
	return c.evidence
}
