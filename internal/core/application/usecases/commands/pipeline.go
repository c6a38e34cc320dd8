// Package commands contains the operations that change order state. Every
// command handler funnels its transition through TransitionPipeline, which is
// the only write path into the order store.
package commands

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"
	"supplychain/internal/pkg/errs"
)

// TransitionPipeline applies a validated transition, appends its event and
// publishes it as one step under the order's lock, then hands the transition
// to the ledger mirror.
//
// Transitions hold the pipeline lock shared; Reset holds it exclusively, so a
// reset never observes a half-applied transition.
type TransitionPipeline struct {
	store     ports.OrderStore
	events    ports.EventLog
	hub       ports.Broadcaster
	mirror    ports.LedgerMirror
	validator services.TransitionValidator
	metrics   ports.Metrics
	logger    *slog.Logger
	clock     func() time.Time

	mu sync.RWMutex

	// emitMu keeps hub delivery in sequence order across orders.
	emitMu sync.Mutex

	hooksMu    sync.Mutex
	resetHooks []func()
}

func NewTransitionPipeline(
	store ports.OrderStore,
	events ports.EventLog,
	hub ports.Broadcaster,
	mirror ports.LedgerMirror,
	validator services.TransitionValidator,
	metrics ports.Metrics,
	logger *slog.Logger,
) *TransitionPipeline {
	return &TransitionPipeline{
		store:     store,
		events:    events,
		hub:       hub,
		mirror:    mirror,
		validator: validator,
		metrics:   metrics,
		logger:    logger.With("component", "TransitionPipeline"),
		clock:     time.Now,
	}
}

// WithClock replaces the time source used to stamp transitions.
func (p *TransitionPipeline) WithClock(clock func() time.Time) *TransitionPipeline {
	p.clock = clock
	return p
}

// Now returns the pipeline's current time.
func (p *TransitionPipeline) Now() time.Time {
	return p.clock()
}

// Orders exposes the read side of the store.
func (p *TransitionPipeline) Orders() ports.OrderReader {
	return p.store
}

// OnReset registers fn to run while Reset holds the pipeline exclusively.
// fn must not call back into the pipeline.
func (p *TransitionPipeline) OnReset(fn func()) {
	p.hooksMu.Lock()
	defer p.hooksMu.Unlock()
	p.resetHooks = append(p.resetHooks, fn)
}

// Create inserts a new order and records its contract_created event.
func (p *TransitionPipeline) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var created *order.Order
	err := p.store.Create(ctx, o, func(o *order.Order) error {
		e, err := p.validator.Created(o)
		if err != nil {
			return err
		}
		if err := p.emit(ctx, e); err != nil {
			return err
		}
		created = o.Clone()
		return nil
	})
	p.observe(ctx, order.TransitionCreate, o.ID(), err)
	if err != nil {
		return nil, err
	}

	p.mirror.Mirror(ports.LedgerEntry{Transition: order.TransitionCreate, Order: created})
	return created, nil
}

// Fire applies transition t to the order with the given id.
func (p *TransitionPipeline) Fire(
	ctx context.Context,
	id kernel.UUID,
	t order.Transition,
	evidence services.Evidence,
) (*order.Order, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	at := p.clock()
	updated, err := p.store.Apply(ctx, id, func(o *order.Order) error {
		e, err := p.validator.Fire(o, t, evidence, at)
		if err != nil {
			return err
		}
		return p.emit(ctx, e)
	})
	p.observe(ctx, t, id, err)
	if err != nil {
		return nil, err
	}

	p.mirror.Mirror(ports.LedgerEntry{Transition: t, Order: updated, Evidence: evidence})
	return updated, nil
}

// Track records a telemetry reading for an in-transit order. Telemetry is not
// a status transition and is not mirrored to the ledger.
func (p *TransitionPipeline) Track(
	ctx context.Context,
	id kernel.UUID,
	location kernel.Location,
	progress float64,
) (*order.Order, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	at := p.clock()
	return p.store.Apply(ctx, id, func(o *order.Order) error {
		e, err := p.validator.Track(o, location, progress, at)
		if err != nil {
			return err
		}
		return p.emit(ctx, e)
	})
}

// Reset clears every order and event and discards events still buffered for
// subscribers. Subscriptions stay open.
func (p *TransitionPipeline) Reset(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := errors.Join(p.store.Reset(ctx), p.events.Reset(ctx)); err != nil {
		return err
	}
	p.hub.Reset()

	p.hooksMu.Lock()
	hooks := append([]func(){}, p.resetHooks...)
	p.hooksMu.Unlock()
	for _, hook := range hooks {
		hook()
	}

	p.logger.InfoContext(ctx, "state reset")
	return nil
}

func (p *TransitionPipeline) emit(ctx context.Context, e event.Event) error {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	appended, err := p.events.Append(ctx, e)
	if err != nil {
		return err
	}
	p.metrics.EventAppended(appended.Type())
	p.hub.Publish(appended)
	return nil
}

func (p *TransitionPipeline) observe(ctx context.Context, t order.Transition, id kernel.UUID, err error) {
	switch {
	case err == nil:
		p.metrics.TransitionObserved(t, ports.ResultAccepted)
		p.logger.DebugContext(ctx, "transition accepted", "transition", t, "orderID", id)
	case IsRejection(err):
		p.metrics.TransitionObserved(t, ports.ResultRejected)
		p.logger.DebugContext(ctx, "transition rejected", "transition", t, "orderID", id, "error", err)
	default:
		p.metrics.TransitionObserved(t, ports.ResultFailed)
		p.logger.ErrorContext(ctx, "transition failed", "transition", t, "orderID", id, "error", err)
	}
}

// IsRejection reports whether err is a business rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		errs.ErrObjectNotFound,
		errs.ErrValueIsInvalid,
		errs.ErrValueIsOutOfRange,
		errs.ErrValueIsRequired,
		errs.ErrTransitionIsInvalid,
		errs.ErrAlreadyInTargetStatus,
		errs.ErrProofVerificationFailed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
