// Package orderstore is the in-memory implementation of ports.OrderStore.
package orderstore

import (
	"context"
	"sync"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/ports"
	"supplychain/internal/pkg/errs"
)

var _ ports.OrderStore = (*Store)(nil)

// entry guards a single order. Apply holds mu for the whole mutation so
// transitions on the same order are serialized.
type entry struct {
	mu    sync.Mutex
	order *order.Order
}

// Store keeps orders in a map guarded by an RWMutex; each order additionally
// has its own mutex. The map lock is only held to look entries up, so Apply
// calls on different orders do not wait for each other.
type Store struct {
	mu      sync.RWMutex
	entries map[kernel.UUID]*entry
	ids     []kernel.UUID
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[kernel.UUID]*entry)}
}

// Create inserts o and runs onCreate under the store lock, so the
// contract_created event is recorded before the order becomes visible.
//
// Returns:
//   - nil on success
//   - validation error for an unconstructed order
//   - error from onCreate, in which case nothing is inserted
func (s *Store) Create(ctx context.Context, o *order.Order, onCreate ports.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[o.ID()]; exists {
		return errs.NewValueIsInvalidError("order " + o.ID().String() + " already exists")
	}

	stored := o.Clone()
	if onCreate != nil {
		if err := onCreate(stored); err != nil {
			return err
		}
	}

	s.entries[o.ID()] = &entry{order: stored}
	s.ids = append(s.ids, o.ID())
	return nil
}

// Get returns a clone of the order, or errs.ErrObjectNotFound.
func (s *Store) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.order.Clone(), nil
}

// Apply runs fn on a clone of the order while holding the order's lock and
// stores the clone only when fn succeeds.
//
// Parameters:
//   - ctx: checked before the lock is taken
//   - id: the order to mutate
//   - fn: the mutation; it may append events and must not call back into the store
//
// Returns:
//   - *order.Order: a clone of the stored result
//   - error: errs.ErrObjectNotFound, or the error returned by fn
//
// Example:
//
//	updated, err := store.Apply(ctx, id, func(o *order.Order) error {
//	    return o.Pay(now)
//	})
func (s *Store) Apply(ctx context.Context, id kernel.UUID, fn ports.Mutation) (*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// A concurrent Reset may have dropped the entry while we waited for its lock.
	if !s.contains(id, e) {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}

	working := e.order.Clone()
	if err = fn(working); err != nil {
		return nil, err
	}

	e.order = working
	return working.Clone(), nil
}

// List returns clones of every order, oldest first.
func (s *Store) List(ctx context.Context) ([]*order.Order, error) {
	return s.filter(ctx, func(*order.Order) bool { return true })
}

func (s *Store) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return s.filter(ctx, func(o *order.Order) bool { return o.Status() == status })
}

func (s *Store) ListByRole(ctx context.Context, role order.Role, partyID string) ([]*order.Order, error) {
	return s.filter(ctx, func(o *order.Order) bool { return o.InvolvesParty(role, partyID) })
}

// Reset drops every order.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[kernel.UUID]*entry)
	s.ids = nil
	return nil
}

func (s *Store) lookup(id kernel.UUID) (*entry, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return e, nil
}

func (s *Store) contains(id kernel.UUID, e *entry) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id] == e
}

func (s *Store) filter(ctx context.Context, keep func(*order.Order) bool) ([]*order.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries := make([]*entry, 0, len(s.ids))
	for _, id := range s.ids {
		entries = append(entries, s.entries[id])
	}
	s.mu.RUnlock()

	result := make([]*order.Order, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if keep(e.order) {
			result = append(result, e.order.Clone())
		}
		e.mu.Unlock()
	}
	return result, nil
}
