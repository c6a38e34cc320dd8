// Package async forwards accepted transitions to a ledger adapter in the
// background, so a slow or unavailable ledger never delays a transition.
package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"

	"github.com/cenkalti/backoff/v4"
)

var (
	_ ports.LedgerMirror = (*Mirror)(nil)
	_ ports.LedgerMirror = Discard{}
)

var errNotMirrored = errors.New("transition is not mirrored to the ledger")

// Config bounds the work the mirror does per entry.
type Config struct {
	QueueSize       int
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		QueueSize:       256,
		Timeout:         2 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
	}
}

// Mirror queues entries in a bounded channel drained by a single worker. When
// the queue is full the entry is dropped and logged. Each ledger call gets its
// own timeout and failed calls are retried with exponential backoff.
type Mirror struct {
	adapter ports.LedgerAdapter
	cfg     Config
	queue   chan ports.LedgerEntry
	metrics ports.Metrics
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewMirror(adapter ports.LedgerAdapter, cfg Config, metrics ports.Metrics, logger *slog.Logger) *Mirror {
	defaults := DefaultConfig()
	if cfg.QueueSize < 1 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}

	m := &Mirror{
		adapter: adapter,
		cfg:     cfg,
		queue:   make(chan ports.LedgerEntry, cfg.QueueSize),
		metrics: metrics,
		logger:  logger.With("component", "ledger_mirror"),
		done:    make(chan struct{}),
	}
	go m.run()
	return m
}

// Mirror enqueues entry without blocking.
func (m *Mirror) Mirror(entry ports.LedgerEntry) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}

	select {
	case m.queue <- entry:
	default:
		m.metrics.LedgerRecorded(entry.Transition, ports.ResultFailed)
		m.logger.Warn("ledger queue full, entry dropped",
			"transition", string(entry.Transition), "order_id", orderID(entry))
	}
}

// Close stops accepting entries and waits until the queued ones are processed
// or ctx is done.
func (m *Mirror) Close(ctx context.Context) error {
	m.mu.Lock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	m.mu.Unlock()

	select {
	case <-m.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) run() {
	defer close(m.done)

	for entry := range m.queue {
		m.record(entry)
	}
}

func (m *Mirror) record(entry ports.LedgerEntry) {
	started := time.Now()
	attempts := 0

	operation := func() error {
		attempts++
		ctx, cancel := context.WithTimeout(context.Background(), m.cfg.Timeout)
		defer cancel()

		receipt, err := m.dispatch(ctx, entry)
		if errors.Is(err, errNotMirrored) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}

		m.logger.Debug("transition mirrored",
			"transition", string(entry.Transition), "order_id", orderID(entry),
			"backend", receipt.Backend, "reference", receipt.Reference)
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = m.cfg.InitialInterval
	policy.MaxElapsedTime = 0

	err := backoff.Retry(operation, backoff.WithMaxRetries(policy, m.cfg.MaxRetries))
	switch {
	case errors.Is(err, errNotMirrored):
	case err != nil:
		m.metrics.LedgerRecorded(entry.Transition, ports.ResultFailed)
		m.logger.Error("ledger mirror failed",
			"transition", string(entry.Transition), "order_id", orderID(entry),
			"attempts", attempts, "elapsed", time.Since(started), "error", err)
	default:
		m.metrics.LedgerRecorded(entry.Transition, ports.ResultAccepted)
	}
}

func (m *Mirror) dispatch(ctx context.Context, entry ports.LedgerEntry) (ports.Receipt, error) {
	if err := entry.Order.Validate(); err != nil {
		return ports.Receipt{}, backoff.Permanent(err)
	}
	id := entry.Order.ID()

	switch entry.Transition {
	case order.TransitionCreate:
		return m.adapter.RecordCreate(ctx, entry.Order)
	case order.TransitionApprove:
		var proof services.Proof
		if entry.Evidence.Proof != nil {
			proof = *entry.Evidence.Proof
		}
		return m.adapter.RecordApprove(ctx, id, proof)
	case order.TransitionDeliver:
		location, ok := entry.Order.CurrentLocation()
		if entry.Evidence.Location != nil {
			location, ok = *entry.Evidence.Location, true
		}
		if !ok {
			return ports.Receipt{}, backoff.Permanent(fmt.Errorf("delivery of %s has no location", id))
		}
		return m.adapter.RecordDeliver(ctx, id, location)
	case order.TransitionPay:
		return m.adapter.RecordPay(ctx, id)
	case order.TransitionCancel:
		return m.adapter.RecordCancel(ctx, id, entry.Order.CancelReason())
	default:
		return ports.Receipt{}, errNotMirrored
	}
}

func orderID(entry ports.LedgerEntry) string {
	if entry.Order == nil {
		return ""
	}
	return entry.Order.ID().String()
}

// Discard is the mirror used when no ledger backend is configured.
type Discard struct{}

func (Discard) Mirror(ports.LedgerEntry) {}
