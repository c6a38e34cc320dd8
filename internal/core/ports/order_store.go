// Package ports defines the contracts between the order lifecycle core and its
// adapters: the authoritative order store, the event log, the broadcast hub,
// and the external ledger and party directory collaborators.
package ports

import (
	"context"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
)

// Mutation changes an order in place. Returning an error discards every change
// the mutation made.
type Mutation func(o *order.Order) error

// OrderReader is the read side of the order store. Every returned order is a
// copy that callers may modify freely.
type OrderReader interface {
	// Get returns errs.ErrObjectNotFound when no order has the id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// List returns all orders in creation order.
	List(ctx context.Context) ([]*order.Order, error)

	ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error)

	// ListByRole returns the orders in which partyID fills role.
	ListByRole(ctx context.Context, role order.Role, partyID string) ([]*order.Order, error)
}

// OrderStore is the single source of truth for the current state of every
// order. It enforces no business rules itself.
//
// Apply calls on the same order id are strictly serialized; calls on different
// ids proceed independently.
type OrderStore interface {
	OrderReader

	// Create inserts a new order. onCreate runs before the order becomes
	// visible; if it fails the order is not inserted.
	Create(ctx context.Context, o *order.Order, onCreate Mutation) error

	// Apply runs fn on a copy of the order while holding the order's lock and
	// stores the copy only when fn succeeds. It returns a copy of the stored
	// result.
	Apply(ctx context.Context, id kernel.UUID, fn Mutation) (*order.Order, error)

	// Reset removes every order.
	Reset(ctx context.Context) error
}
