package ledgerrepo

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"
	"supplychain/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const Backend = "postgres"

var _ ports.LedgerAdapter = (*GormLedger)(nil)

// GormLedger implements ports.LedgerAdapter on Postgres. Each call inserts a
// record and updates the mirrored order in one transaction.
type GormLedger struct {
	db    *gorm.DB
	clock func() time.Time
}

func NewGormLedger(db *gorm.DB) *GormLedger {
	return &GormLedger{db: db, clock: time.Now}
}

func (l *GormLedger) RecordCreate(ctx context.Context, o *order.Order) (ports.Receipt, error) {
	if err := o.Validate(); err != nil {
		return ports.Receipt{}, err
	}

	mirrored := OrderDTO{
		ID:         o.ID().Bytes(),
		SupplierID: o.Parties().Supplier(),
		BuyerID:    o.Parties().Buyer(),
		Quantity:   o.Terms().Quantity(),
		Status:     order.Created.String(),
	}
	if c, ok := o.ApprovalCommitment(); ok {
		mirrored.Commitment = c.String()
	}

	return l.record(ctx, o.ID(), order.TransitionCreate, order.Created, map[string]any{
		"quantity": mirrored.Quantity,
	}, func(tx *gorm.DB, at time.Time) error {
		mirrored.UpdatedAt = at
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mirrored).Error
	})
}

func (l *GormLedger) RecordApprove(ctx context.Context, orderID kernel.UUID, proof services.Proof) (ports.Receipt, error) {
	nonceDigest := sha256.Sum256([]byte(proof.Nonce))
	return l.record(ctx, orderID, order.TransitionApprove, order.Approved, map[string]any{
		"nonceDigest": hex.EncodeToString(nonceDigest[:]),
	}, nil)
}

func (l *GormLedger) RecordDeliver(ctx context.Context, orderID kernel.UUID, location kernel.Location) (ports.Receipt, error) {
	return l.record(ctx, orderID, order.TransitionDeliver, order.Delivered, map[string]any{
		"lat": location.Latitude(),
		"lng": location.Longitude(),
	}, nil)
}

func (l *GormLedger) RecordPay(ctx context.Context, orderID kernel.UUID) (ports.Receipt, error) {
	return l.record(ctx, orderID, order.TransitionPay, order.Paid, map[string]any{}, nil)
}

func (l *GormLedger) RecordCancel(ctx context.Context, orderID kernel.UUID, reason string) (ports.Receipt, error) {
	return l.record(ctx, orderID, order.TransitionCancel, order.Cancelled, map[string]any{
		"reason": reason,
	}, nil)
}

// MirroredStatus returns the last status recorded for the order.
func (l *GormLedger) MirroredStatus(ctx context.Context, orderID kernel.UUID) (order.Status, error) {
	var dto OrderDTO
	if err := l.db.WithContext(ctx).First(&dto, "id = ?", orderID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return order.Unknown, errs.NewObjectNotFoundError("order", orderID.String())
		}
		return order.Unknown, err
	}
	return order.ParseStatus(dto.Status)
}

// History returns the records of an order in the order they were written.
func (l *GormLedger) History(ctx context.Context, orderID kernel.UUID) ([]RecordDTO, error) {
	var records []RecordDTO
	err := l.db.WithContext(ctx).
		Where("order_id = ?", orderID.Bytes()).
		Order("recorded_at, id").
		Find(&records).Error
	return records, err
}

// record writes the ledger record, runs extra inside the transaction, and
// moves the mirrored order to status. A missing mirrored order is an error for
// every transition but create.
func (l *GormLedger) record(
	ctx context.Context,
	orderID kernel.UUID,
	transition order.Transition,
	status order.Status,
	payload map[string]any,
	extra func(tx *gorm.DB, at time.Time) error,
) (ports.Receipt, error) {
	if err := orderID.Validate(); err != nil {
		return ports.Receipt{}, err
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return ports.Receipt{}, fmt.Errorf("marshal ledger payload: %w", err)
	}

	at := l.clock().UTC()
	rec := RecordDTO{
		ID:         kernel.NewTimeOrderedUUID().Bytes(),
		OrderID:    orderID.Bytes(),
		Transition: string(transition),
		Payload:    string(raw),
		RecordedAt: at,
	}

	err = l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if extra != nil {
			if err := extra(tx, at); err != nil {
				return err
			}
		}

		result := tx.Model(&OrderDTO{}).
			Where("id = ?", rec.OrderID).
			Updates(map[string]any{"status": status.String(), "updated_at": at})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewObjectNotFoundError("order", orderID.String())
		}

		return tx.Create(&rec).Error
	})
	if err != nil {
		return ports.Receipt{}, err
	}

	return ports.Receipt{Backend: Backend, Reference: rec.ID.String(), RecordedAt: at}, nil
}
