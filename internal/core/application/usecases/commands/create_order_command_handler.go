package commands

import (
	"context"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
)

// CreateOrderCommandHandler opens new orders in the created status and
// records their contract_created event.
type CreateOrderCommandHandler struct {
	pipeline *TransitionPipeline
}

func NewCreateOrderCommandHandler(pipeline *TransitionPipeline) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		pipeline: pipeline,
	}
}

// Handle assigns a fresh id and stamps the order with the pipeline clock.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	o, err := order.NewOrder(kernel.NewUUID(), cmd.Parties(), cmd.Terms(), cmd.Destination(), h.pipeline.Now())
	if err != nil {
		return nil, err
	}

	return h.pipeline.Create(ctx, o)
}
