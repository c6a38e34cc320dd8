package commands

import (
	"context"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
)

// CancelOrderCommandHandler aborts unpaid orders. Tracking sessions of a
// cancelled order are dropped on the scheduler's next tick.
type CancelOrderCommandHandler struct {
	pipeline *TransitionPipeline
}

func NewCancelOrderCommandHandler(pipeline *TransitionPipeline) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		pipeline: pipeline,
	}
}

// Handle cancels the order and records the reason in the contract_cancelled
// event. Cancelling twice returns errs.ErrAlreadyInTargetStatus and a paid
// order returns errs.ErrTransitionIsInvalid.
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	return h.pipeline.Fire(ctx, cmd.OrderID(), order.TransitionCancel, services.Evidence{Reason: cmd.Reason()})
}
