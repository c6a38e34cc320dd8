package commands

import (
	"context"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
)

// DeliverOrderCommandHandler handles manual delivery confirmations. The
// tracking scheduler confirms delivery through the same pipeline when a
// shipment reaches its destination.
type DeliverOrderCommandHandler struct {
	pipeline *TransitionPipeline
}

func NewDeliverOrderCommandHandler(pipeline *TransitionPipeline) DeliverOrderCommandHandler {
	return DeliverOrderCommandHandler{
		pipeline: pipeline,
	}
}

// Handle confirms delivery at the command's location. Approved orders may be
// delivered manually before the scheduler starts the shipment.
func (h *DeliverOrderCommandHandler) Handle(ctx context.Context, cmd DeliverOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	location := cmd.Location()
	return h.pipeline.Fire(ctx, cmd.OrderID(), order.TransitionDeliver, services.Evidence{Location: &location})
}
