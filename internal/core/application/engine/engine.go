// Package engine is the public face of the order lifecycle core. Transport
// adapters talk to an Engine; they never reach the store, the event log or
// the scheduler directly.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"supplychain/internal/core/application/usecases/commands"
	"supplychain/internal/core/application/usecases/queries"
	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"
	"supplychain/internal/jobs"
	"supplychain/internal/pkg/errs"
)

// Closer releases a resource owned by the engine on shutdown.
type Closer interface {
	Close(ctx context.Context) error
}

// CloserFunc adapts a function to Closer.
type CloserFunc func(ctx context.Context) error

func (f CloserFunc) Close(ctx context.Context) error {
	return f(ctx)
}

// Engine orchestrates the order lifecycle. Every operation returns either an
// order (or list) or one of the typed errors from internal/pkg/errs.
type Engine struct {
	pipeline *commands.TransitionPipeline
	hub      ports.Broadcaster
	jobs     *jobs.JobManager
	closers  []Closer
	logger   *slog.Logger

	createOrder  commands.CreateOrderCommandHandler
	approveOrder commands.ApproveOrderCommandHandler
	deliverOrder commands.DeliverOrderCommandHandler
	payOrder     commands.PayOrderCommandHandler
	cancelOrder  commands.CancelOrderCommandHandler

	getOrder   queries.GetOrderQueryHandler
	listOrders queries.ListOrdersQueryHandler
	listEvents queries.ListEventsQueryHandler
}

// New builds an engine. closers run in order on Close, after the scheduler
// has stopped.
func New(
	pipeline *commands.TransitionPipeline,
	events ports.EventLog,
	hub ports.Broadcaster,
	jobManager *jobs.JobManager,
	logger *slog.Logger,
	closers ...Closer,
) *Engine {
	return &Engine{
		pipeline: pipeline,
		hub:      hub,
		jobs:     jobManager,
		closers:  closers,
		logger:   logger.With("component", "Engine"),

		createOrder:  commands.NewCreateOrderCommandHandler(pipeline),
		approveOrder: commands.NewApproveOrderCommandHandler(pipeline),
		deliverOrder: commands.NewDeliverOrderCommandHandler(pipeline),
		payOrder:     commands.NewPayOrderCommandHandler(pipeline),
		cancelOrder:  commands.NewCancelOrderCommandHandler(pipeline),

		getOrder:   queries.NewGetOrderQueryHandler(pipeline.Orders()),
		listOrders: queries.NewListOrdersQueryHandler(pipeline.Orders()),
		listEvents: queries.NewListEventsQueryHandler(events),
	}
}

func (e *Engine) CreateOrder(ctx context.Context, params commands.CreateOrderParams) (*order.Order, error) {
	cmd, err := commands.NewCreateOrderCommand(params)
	if err != nil {
		return nil, err
	}
	return e.createOrder.Handle(ctx, cmd)
}

func (e *Engine) ApproveOrder(ctx context.Context, orderID string, proof services.Proof) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	cmd, err := commands.NewApproveOrderCommand(id, proof)
	if err != nil {
		return nil, err
	}
	return e.approveOrder.Handle(ctx, cmd)
}

func (e *Engine) DeliverOrder(ctx context.Context, orderID string, lat, lng float64) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	cmd, err := commands.NewDeliverOrderCommand(id, lat, lng)
	if err != nil {
		return nil, err
	}
	return e.deliverOrder.Handle(ctx, cmd)
}

func (e *Engine) PayOrder(ctx context.Context, orderID, evidence string) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	cmd, err := commands.NewPayOrderCommand(id, evidence)
	if err != nil {
		return nil, err
	}
	return e.payOrder.Handle(ctx, cmd)
}

func (e *Engine) CancelOrder(ctx context.Context, orderID, reason string) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	cmd, err := commands.NewCancelOrderCommand(id, reason)
	if err != nil {
		return nil, err
	}
	return e.cancelOrder.Handle(ctx, cmd)
}

func (e *Engine) GetOrder(ctx context.Context, orderID string) (*order.Order, error) {
	id, err := parseOrderID(orderID)
	if err != nil {
		return nil, err
	}
	query, err := queries.NewGetOrderQuery(id)
	if err != nil {
		return nil, err
	}
	return e.getOrder.Handle(ctx, query)
}

func (e *Engine) ListOrders(ctx context.Context, filter queries.OrderFilter) ([]*order.Order, error) {
	query, err := queries.NewListOrdersQuery(filter)
	if err != nil {
		return nil, err
	}
	return e.listOrders.Handle(ctx, query)
}

func (e *Engine) ListEvents(ctx context.Context, filter queries.EventFilter) ([]event.Event, error) {
	query, err := queries.NewListEventsQuery(filter)
	if err != nil {
		return nil, err
	}
	return e.listEvents.Handle(ctx, query)
}

// Subscribe registers a live observer. Only events published after the call
// are delivered; use ListEvents with SinceSeq to catch up.
func (e *Engine) Subscribe() ports.Subscription {
	return e.hub.Subscribe()
}

func (e *Engine) Unsubscribe(sub ports.Subscription) {
	e.hub.Unsubscribe(sub)
}

// Reset clears every order, event and tracking session atomically.
func (e *Engine) Reset(ctx context.Context) error {
	return e.pipeline.Reset(ctx)
}

func (e *Engine) SchedulerStatus() jobs.Status {
	return e.jobs.Status()
}

func (e *Engine) StartScheduler() {
	e.jobs.StartAll()
}

func (e *Engine) StopScheduler() {
	e.jobs.StopAll()
}

// Close stops the scheduler and releases the engine's resources.
func (e *Engine) Close(ctx context.Context) error {
	e.jobs.StopAll()

	var errList []error
	for _, c := range e.closers {
		if err := c.Close(ctx); err != nil {
			errList = append(errList, err)
		}
	}
	if err := errors.Join(errList...); err != nil {
		e.logger.ErrorContext(ctx, "engine closed with errors", "error", err)
		return err
	}

	e.logger.InfoContext(ctx, "engine closed")
	return nil
}

func parseOrderID(s string) (kernel.UUID, error) {
	id, err := kernel.UUIDFromString(s)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}
	return id, nil
}
