// Package ledgerrepo mirrors accepted order transitions into Postgres: an
// append-only table of ledger records plus one row per order holding the last
// mirrored status.
package ledgerrepo

import (
	"time"

	"github.com/google/uuid"
)

// OrderDTO is the mirrored view of an order.
type OrderDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID string    `gorm:"index"`
	BuyerID    string    `gorm:"index"`
	Quantity   int
	Commitment string
	Status     string `gorm:"index"`
	UpdatedAt  time.Time
}

func (OrderDTO) TableName() string {
	return "ledger_orders"
}

// RecordDTO is one immutable ledger record.
type RecordDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID    uuid.UUID `gorm:"type:uuid;index"`
	Transition string
	Payload    string `gorm:"type:jsonb"`
	RecordedAt time.Time
}

func (RecordDTO) TableName() string {
	return "ledger_records"
}
