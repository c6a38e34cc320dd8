package queries

import (
	"context"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/ports"
)

type ListOrdersQueryHandler struct {
	orders ports.OrderReader
}

func NewListOrdersQueryHandler(orders ports.OrderReader) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{orders: orders}
}

// Handle returns the matching orders in creation order.
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		orders []*order.Order
		err    error
	)
	role, byRole := query.Role()
	switch {
	case byRole:
		orders, err = h.orders.ListByRole(ctx, role, query.PartyID())
	case query.Status() != order.Unknown:
		orders, err = h.orders.ListByStatus(ctx, query.Status())
	default:
		orders, err = h.orders.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	result := make([]*order.Order, 0, len(orders))
	for _, o := range orders {
		if query.Status() != order.Unknown && o.Status() != query.Status() {
			continue
		}
		if !byRole && query.PartyID() != "" && !involvesAnyRole(o, query.PartyID()) {
			continue
		}
		result = append(result, o)
	}
	return result, nil
}

func involvesAnyRole(o *order.Order, partyID string) bool {
	for _, role := range []order.Role{order.RoleSupplier, order.RoleBuyer, order.RoleLogistics} {
		if o.InvolvesParty(role, partyID) {
			return true
		}
	}
	return false
}
