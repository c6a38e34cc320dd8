package ports

import (
	"context"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
)

// Receipt acknowledges a ledger write.
type Receipt struct {
	Backend    string
	Reference  string
	RecordedAt time.Time
}

// LedgerAdapter mirrors accepted transitions onto an external ledger. Every
// call may fail independently of the in-memory transition.
type LedgerAdapter interface {
	RecordCreate(ctx context.Context, o *order.Order) (Receipt, error)
	RecordApprove(ctx context.Context, orderID kernel.UUID, proof services.Proof) (Receipt, error)
	RecordDeliver(ctx context.Context, orderID kernel.UUID, location kernel.Location) (Receipt, error)
	RecordPay(ctx context.Context, orderID kernel.UUID) (Receipt, error)
	RecordCancel(ctx context.Context, orderID kernel.UUID, reason string) (Receipt, error)
}

// LedgerEntry describes one accepted transition to be mirrored.
type LedgerEntry struct {
	Transition order.Transition
	Order      *order.Order
	Evidence   services.Evidence
}

// LedgerMirror hands entries to a LedgerAdapter. Mirror must return without
// waiting for the ledger.
type LedgerMirror interface {
	Mirror(entry LedgerEntry)
}
