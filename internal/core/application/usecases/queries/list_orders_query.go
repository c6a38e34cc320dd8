package queries

import (
	"errors"
	"strings"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/pkg/errs"
	"supplychain/internal/pkg/guard"
)

var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// OrderFilter narrows ListOrders. Empty fields match everything. A party id
// without a role matches orders in which the party fills any role.
type OrderFilter struct {
	Status  string
	Role    string
	PartyID string
}

type ListOrdersQuery struct {
	status  order.Status
	role    order.Role
	partyID string

	guard guard.ConstructorGuard
}

func NewListOrdersQuery(filter OrderFilter) (ListOrdersQuery, error) {
	q := ListOrdersQuery{
		partyID: strings.TrimSpace(filter.PartyID),
		guard:   guard.NewConstructorGuard(),
	}

	var statusErr, roleErr error
	if filter.Status != "" {
		q.status, statusErr = order.ParseStatus(filter.Status)
	}
	if filter.Role != "" {
		q.role, roleErr = order.ParseRole(filter.Role)
		if roleErr == nil && q.partyID == "" {
			roleErr = errs.NewValueIsRequiredError("partyId")
		}
	}
	if err := errors.Join(statusErr, roleErr); err != nil {
		return ListOrdersQuery{}, err
	}

	return q, nil
}

func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// Status returns the status filter, or order.Unknown when unset.
func (q ListOrdersQuery) Status() order.Status {
	return q.status
}

func (q ListOrdersQuery) Role() (order.Role, bool) {
	return q.role, q.role != ""
}

func (q ListOrdersQuery) PartyID() string {
	return q.partyID
}
