package commands

import (
	"errors"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/pkg/guard"
)

var ErrApproveOrderCommandIsNotConstructed = errors.New(
	"ApproveOrderCommand must be created via NewApproveOrderCommand constructor",
)

// ApproveOrderCommand opens the order's commitment. The order is approved only
// when the proof recomputes to the stored commitment.
type ApproveOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	proof   services.Proof

	guard guard.ConstructorGuard
}

// NewApproveOrderCommand creates an approval request.
// Validates that the order id is set and the proof carries a value and a nonce.
func NewApproveOrderCommand(orderID kernel.UUID, proof services.Proof) (ApproveOrderCommand, error) {
	cmd := ApproveOrderCommand{
		proof: proof,
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setOrderID(orderID); err != nil {
		return ApproveOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrApproveOrderCommandIsNotConstructed if validation fails.
func (c ApproveOrderCommand) Validate() error {
	return c.guard.Validate(ErrApproveOrderCommandIsNotConstructed)
}

// OrderID returns the order to approve.
func (c ApproveOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Proof returns the commitment opening supplied by the buyer.
func (c ApproveOrderCommand) Proof() services.Proof {
	return c.proof
}

func (c *ApproveOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}
