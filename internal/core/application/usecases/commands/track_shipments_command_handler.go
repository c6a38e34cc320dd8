package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/model/shipment"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"
	"supplychain/internal/pkg/errs"
)

// AutoReleasePrefix prefixes the payment evidence the scheduler supplies when
// it releases payment on its own.
const AutoReleasePrefix = "oracle:auto-release:"

// TrackingConfig shapes the simulated shipments.
type TrackingConfig struct {
	// TotalSteps is the number of ticks from origin to destination.
	TotalSteps int
	// PaymentDelay is the wait between automatic delivery and payment.
	PaymentDelay time.Duration
	// DefaultOrigin is used when the supplier has no known location.
	DefaultOrigin kernel.Location
}

// DefaultTrackingConfig returns ten steps per shipment, a three second payment
// delay and Rotterdam as the fallback origin.
func DefaultTrackingConfig() TrackingConfig {
	origin, _ := kernel.NewLocation(51.9244, 4.4777)
	return TrackingConfig{
		TotalSteps:    10,
		PaymentDelay:  3 * time.Second,
		DefaultOrigin: origin,
	}
}

// TrackShipmentsCommandHandler is the tracking scheduler's tick. It owns the
// tracking sessions; the orders themselves only change through the pipeline,
// which remains the judge of whether a fired transition is legal. A session
// whose order disappeared or moved on out-of-band is dropped without firing.
type TrackShipmentsCommandHandler struct {
	pipeline  *TransitionPipeline
	orders    ports.OrderReader
	directory ports.PartyDirectory
	cfg       TrackingConfig
	metrics   ports.Metrics
	logger    *slog.Logger

	// tickMu serializes ticks. mu guards sessions and pending and is never
	// held across pipeline calls.
	tickMu   sync.Mutex
	mu       sync.Mutex
	sessions map[kernel.UUID]*shipment.Session
	pending  map[kernel.UUID]time.Time
}

// NewTrackShipmentsCommandHandler creates the scheduler's tick handler.
// It starts with no sessions and picks up approved orders from the store on
// the first tick.
func NewTrackShipmentsCommandHandler(
	pipeline *TransitionPipeline,
	directory ports.PartyDirectory,
	cfg TrackingConfig,
	metrics ports.Metrics,
	logger *slog.Logger,
) (*TrackShipmentsCommandHandler, error) {
	if cfg.TotalSteps < 1 {
		return nil, errs.NewValueIsInvalidErrorWithCause("totalSteps",
			fmt.Errorf("%d is less than 1", cfg.TotalSteps))
	}
	if err := cfg.DefaultOrigin.Validate(); err != nil {
		return nil, err
	}

	h := &TrackShipmentsCommandHandler{
		pipeline:  pipeline,
		orders:    pipeline.Orders(),
		directory: directory,
		cfg:       cfg,
		metrics:   metrics,
		logger:    logger.With("component", "TrackShipmentsCommandHandler"),
		sessions:  make(map[kernel.UUID]*shipment.Session),
		pending:   make(map[kernel.UUID]time.Time),
	}
	pipeline.OnReset(h.forget)
	return h, nil
}

// Handle runs one tick: due payments are released, newly approved orders
// start transit, and every active session moves one step. Failures of a
// single order are logged and do not stop the tick; only failures to read the
// store are returned.
func (h *TrackShipmentsCommandHandler) Handle(ctx context.Context, cmd TrackShipmentsCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	h.tickMu.Lock()
	defer h.tickMu.Unlock()

	started := time.Now()

	h.releasePayments(ctx)
	startErr := h.startSessions(ctx)
	h.advanceSessions(ctx)

	h.metrics.ActiveSessions(h.ActiveSessions())
	h.metrics.TickCompleted(time.Since(started))

	return startErr
}

// ActiveSessions returns the number of orders currently being tracked.
func (h *TrackShipmentsCommandHandler) ActiveSessions() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// PendingPayments returns the number of delivered orders awaiting automatic
// payment.
func (h *TrackShipmentsCommandHandler) PendingPayments() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pending)
}

func (h *TrackShipmentsCommandHandler) releasePayments(ctx context.Context) {
	now := h.pipeline.Now()

	h.mu.Lock()
	var due []kernel.UUID
	for id, at := range h.pending {
		if !now.Before(at) {
			due = append(due, id)
		}
	}
	h.mu.Unlock()

	for _, id := range due {
		_, err := h.pipeline.Fire(ctx, id, order.TransitionPay, services.Evidence{Payment: AutoReleasePrefix + id.String()})
		switch {
		case err == nil:
			h.logger.InfoContext(ctx, "payment released", "orderID", id)
		case IsRejection(err):
			h.logger.DebugContext(ctx, "stale payment discarded", "orderID", id, "reason", err)
		default:
			h.logger.ErrorContext(ctx, "failed to release payment", "orderID", id, "error", err)
			continue
		}

		h.mu.Lock()
		delete(h.pending, id)
		h.mu.Unlock()
	}
}

func (h *TrackShipmentsCommandHandler) startSessions(ctx context.Context) error {
	approved, err := h.orders.ListByStatus(ctx, order.Approved)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list approved orders", "error", err)
		return err
	}

	for _, o := range approved {
		if h.hasSession(o.ID()) {
			continue
		}

		if err := h.startSession(ctx, o); err != nil {
			if IsRejection(err) {
				h.logger.DebugContext(ctx, "order left approved before transit", "orderID", o.ID(), "reason", err)
				continue
			}
			h.logger.ErrorContext(ctx, "failed to start transit", "orderID", o.ID(), "error", err)
		}
	}
	return nil
}

func (h *TrackShipmentsCommandHandler) startSession(ctx context.Context, o *order.Order) error {
	origin := h.originOf(ctx, o)

	session, err := shipment.NewSession(o.ID(), origin, o.Destination(), h.cfg.TotalSteps, h.pipeline.Now())
	if err != nil {
		return err
	}

	if _, err := h.pipeline.Fire(ctx, o.ID(), order.TransitionBeginTransit, services.Evidence{Location: &origin}); err != nil {
		return err
	}

	h.mu.Lock()
	h.sessions[o.ID()] = session
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "transit started",
		"orderID", o.ID(),
		"origin", origin.String(),
		"destination", o.Destination().String(),
	)
	return nil
}

func (h *TrackShipmentsCommandHandler) originOf(ctx context.Context, o *order.Order) kernel.Location {
	if h.directory == nil {
		return h.cfg.DefaultOrigin
	}

	supplier := o.Parties().Supplier()
	loc, found, err := h.directory.Location(ctx, supplier)
	if err != nil {
		h.logger.WarnContext(ctx, "party directory lookup failed, using default origin",
			"supplierID", supplier, "error", err)
		return h.cfg.DefaultOrigin
	}
	if !found {
		return h.cfg.DefaultOrigin
	}
	return loc
}

func (h *TrackShipmentsCommandHandler) advanceSessions(ctx context.Context) {
	h.mu.Lock()
	sessions := make([]*shipment.Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		if err := h.advance(ctx, s); err != nil {
			h.logger.ErrorContext(ctx, "failed to advance shipment", "orderID", s.OrderID(), "error", err)
		}
	}
}

func (h *TrackShipmentsCommandHandler) advance(ctx context.Context, s *shipment.Session) error {
	id := s.OrderID()

	o, err := h.orders.Get(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		h.dropSession(id)
		return nil
	}
	if err != nil {
		return err
	}
	if o.Status() != order.InTransit {
		h.dropSession(id)
		return nil
	}

	location, progress, err := s.Advance()
	if err != nil {
		return err
	}

	if !s.IsComplete() {
		if _, err := h.pipeline.Track(ctx, id, location, progress); err != nil {
			if IsRejection(err) {
				h.dropSession(id)
				return nil
			}
			return err
		}
		return nil
	}

	destination := o.Destination()
	if _, err := h.pipeline.Fire(ctx, id, order.TransitionDeliver, services.Evidence{Location: &destination}); err != nil {
		if IsRejection(err) {
			h.dropSession(id)
			return nil
		}
		// the session stays at the destination and delivery is retried next tick
		return err
	}
	h.dropSession(id)

	h.mu.Lock()
	h.pending[id] = h.pipeline.Now().Add(h.cfg.PaymentDelay)
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "shipment delivered", "orderID", id, "paymentDelay", h.cfg.PaymentDelay)
	return nil
}

func (h *TrackShipmentsCommandHandler) hasSession(id kernel.UUID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.sessions[id]
	return ok
}

func (h *TrackShipmentsCommandHandler) dropSession(id kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, id)
}

func (h *TrackShipmentsCommandHandler) forget() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.sessions)
	clear(h.pending)
}
