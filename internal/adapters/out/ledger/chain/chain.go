// Package chain is an in-process, append-only ledger whose entries are
// hash-chained to their predecessor. It stands in for an external distributed
// ledger and can be verified end to end.
package chain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"

	"github.com/gowebpki/jcs"
)

const (
	Backend     = "chain"
	GenesisHash = "genesis"
)

var _ ports.LedgerAdapter = (*Ledger)(nil)

// Entry is an immutable ledger record.
type Entry struct {
	Sequence   uint64         `json:"sequence"`
	Kind       string         `json:"kind"`
	OrderID    string         `json:"orderId"`
	Data       map[string]any `json:"data"`
	PrevHash   string         `json:"prevHash"`
	Hash       string         `json:"hash"`
	RecordedAt time.Time      `json:"recordedAt"`
}

// Ledger appends entries whose hash covers the sequence number, the kind, the
// order id, the data and the previous hash, serialized as RFC 8785 canonical
// JSON.
type Ledger struct {
	mu      sync.RWMutex
	entries []Entry
	head    string
	clock   func() time.Time
}

func NewLedger() *Ledger {
	return &Ledger{head: GenesisHash, clock: time.Now}
}

// WithClock overrides the clock for tests.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	l.clock = clock
	return l
}

func (l *Ledger) RecordCreate(ctx context.Context, o *order.Order) (ports.Receipt, error) {
	if err := o.Validate(); err != nil {
		return ports.Receipt{}, err
	}

	data := map[string]any{
		"supplierId": o.Parties().Supplier(),
		"buyerId":    o.Parties().Buyer(),
		"quantity":   o.Terms().Quantity(),
		"destination": map[string]any{
			"lat": o.Destination().Latitude(),
			"lng": o.Destination().Longitude(),
		},
	}
	if c, ok := o.ApprovalCommitment(); ok {
		data["commitment"] = c.String()
	}
	return l.append(ctx, string(order.TransitionCreate), o.ID(), data)
}

// RecordApprove stores only the fact that a proof was accepted, never the
// opened value.
func (l *Ledger) RecordApprove(ctx context.Context, orderID kernel.UUID, proof services.Proof) (ports.Receipt, error) {
	nonceDigest := sha256.Sum256([]byte(proof.Nonce))
	return l.append(ctx, string(order.TransitionApprove), orderID, map[string]any{
		"nonceDigest": hex.EncodeToString(nonceDigest[:]),
	})
}

func (l *Ledger) RecordDeliver(ctx context.Context, orderID kernel.UUID, location kernel.Location) (ports.Receipt, error) {
	return l.append(ctx, string(order.TransitionDeliver), orderID, map[string]any{
		"lat": location.Latitude(),
		"lng": location.Longitude(),
	})
}

func (l *Ledger) RecordPay(ctx context.Context, orderID kernel.UUID) (ports.Receipt, error) {
	return l.append(ctx, string(order.TransitionPay), orderID, map[string]any{})
}

func (l *Ledger) RecordCancel(ctx context.Context, orderID kernel.UUID, reason string) (ports.Receipt, error) {
	return l.append(ctx, string(order.TransitionCancel), orderID, map[string]any{"reason": reason})
}

// Entries returns a copy of all entries in append order.
func (l *Ledger) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		e.Data = maps.Clone(e.Data)
		out[i] = e
	}
	return out
}

func (l *Ledger) Head() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.head
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Verify recomputes every hash and checks the chain links.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	prev := GenesisHash
	for i, e := range l.entries {
		if e.PrevHash != prev {
			return fmt.Errorf("chain broken at entry %d: expected prev %s, got %s", i+1, prev, e.PrevHash)
		}

		computed, err := entryHash(e.Sequence, e.Kind, e.OrderID, e.Data, e.PrevHash)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i+1, err)
		}
		if computed != e.Hash {
			return fmt.Errorf("hash mismatch at entry %d", i+1)
		}
		prev = e.Hash
	}
	return nil
}

func (l *Ledger) append(ctx context.Context, kind string, orderID kernel.UUID, data map[string]any) (ports.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return ports.Receipt{}, err
	}
	if err := orderID.Validate(); err != nil {
		return ports.Receipt{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	seq := uint64(len(l.entries)) + 1
	hash, err := entryHash(seq, kind, orderID.String(), data, l.head)
	if err != nil {
		return ports.Receipt{}, err
	}

	entry := Entry{
		Sequence:   seq,
		Kind:       kind,
		OrderID:    orderID.String(),
		Data:       data,
		PrevHash:   l.head,
		Hash:       hash,
		RecordedAt: l.clock(),
	}
	l.entries = append(l.entries, entry)
	l.head = hash

	return ports.Receipt{Backend: Backend, Reference: hash, RecordedAt: entry.RecordedAt}, nil
}

func entryHash(seq uint64, kind, orderID string, data map[string]any, prev string) (string, error) {
	raw, err := json.Marshal(struct {
		Seq     uint64         `json:"seq"`
		Kind    string         `json:"kind"`
		OrderID string         `json:"orderId"`
		Data    map[string]any `json:"data"`
		Prev    string         `json:"prev"`
	}{seq, kind, orderID, data, prev})
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize entry: %w", err)
	}

	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
