package commands

import (
	"context"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
)

// PayOrderCommandHandler releases payment for delivered orders.
//
// Example:
//
//	handler := NewPayOrderCommandHandler(pipeline)
//	cmd, err := NewPayOrderCommand(orderID, "wire:2024-118")
//	if err != nil {
//	    return err
//	}
//	if _, err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("release payment: %w", err)
//	}
type PayOrderCommandHandler struct {
	pipeline *TransitionPipeline
}

// NewPayOrderCommandHandler creates a handler that fires payments through pipeline.
func NewPayOrderCommandHandler(pipeline *TransitionPipeline) PayOrderCommandHandler {
	return PayOrderCommandHandler{
		pipeline: pipeline,
	}
}

// Handle moves a delivered order to paid and returns the updated order.
func (h *PayOrderCommandHandler) Handle(ctx context.Context, cmd PayOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.pipeline.Fire(ctx, cmd.OrderID(), order.TransitionPay, services.Evidence{Payment: cmd.Evidence()})
}
