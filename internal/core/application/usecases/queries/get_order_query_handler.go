package queries

import (
	"context"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/ports"
)

type GetOrderQueryHandler struct {
	orders ports.OrderReader
}

func NewGetOrderQueryHandler(orders ports.OrderReader) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders}
}

// Handle returns errs.ErrObjectNotFound for unknown ids.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	return h.orders.Get(ctx, query.OrderID())
}
