// Package http exposes the order engine over REST with a server-sent events
// stream for live observers.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"supplychain/internal/core/application/usecases/commands"
	"supplychain/internal/core/application/usecases/queries"
	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"
	"supplychain/internal/jobs"
	"supplychain/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Engine is the part of engine.Engine the HTTP adapter uses.
type Engine interface {
	CreateOrder(ctx context.Context, params commands.CreateOrderParams) (*order.Order, error)
	ApproveOrder(ctx context.Context, orderID string, proof services.Proof) (*order.Order, error)
	DeliverOrder(ctx context.Context, orderID string, lat, lng float64) (*order.Order, error)
	PayOrder(ctx context.Context, orderID, evidence string) (*order.Order, error)
	CancelOrder(ctx context.Context, orderID, reason string) (*order.Order, error)
	GetOrder(ctx context.Context, orderID string) (*order.Order, error)
	ListOrders(ctx context.Context, filter queries.OrderFilter) ([]*order.Order, error)
	ListEvents(ctx context.Context, filter queries.EventFilter) ([]event.Event, error)
	Subscribe() ports.Subscription
	Unsubscribe(sub ports.Subscription)
	Reset(ctx context.Context) error
	SchedulerStatus() jobs.Status
	StartScheduler()
	StopScheduler()
}

// DefaultKeepAlive is the interval of comment frames on idle event streams.
const DefaultKeepAlive = 15 * time.Second

// Server translates HTTP requests into engine calls.
type Server struct {
	engine    Engine
	keepAlive time.Duration
}

func NewServer(engine Engine) *Server {
	return &Server{engine: engine, keepAlive: DefaultKeepAlive}
}

// WithKeepAlive changes the interval of keep-alive frames on the event stream.
func (s *Server) WithKeepAlive(d time.Duration) *Server {
	s.keepAlive = d
	return s
}

// RegisterRoutes mounts every endpoint on e.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.POST("/orders/:id/approve", s.ApproveOrder)
	api.POST("/orders/:id/deliver", s.DeliverOrder)
	api.POST("/orders/:id/pay", s.PayOrder)
	api.POST("/orders/:id/cancel", s.CancelOrder)

	api.GET("/events", s.ListEvents)
	api.GET("/events/stream", s.StreamEvents)

	api.GET("/scheduler", s.GetScheduler)
	api.POST("/scheduler/start", s.StartScheduler)
	api.POST("/scheduler/stop", s.StopScheduler)

	api.POST("/admin/reset", s.Reset)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req NewOrder
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	o, err := s.engine.CreateOrder(ctx.Request().Context(), commands.CreateOrderParams{
		SupplierID:         req.SupplierID,
		BuyerID:            req.BuyerID,
		LogisticsID:        req.LogisticsID,
		Quantity:           req.Quantity,
		EncryptedPrice:     req.EncryptedPrice,
		PriceCommitment:    req.PriceCommitment,
		QuantityCommitment: req.QuantityCommitment,
		DestinationLat:     req.Destination.Lat,
		DestinationLng:     req.Destination.Lng,
	})
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toOrder(o))
}

// ListOrders handles GET /api/v1/orders?status=&role=&partyId=.
func (s *Server) ListOrders(ctx echo.Context) error {
	orders, err := s.engine.ListOrders(ctx.Request().Context(), queries.OrderFilter{
		Status:  ctx.QueryParam("status"),
		Role:    ctx.QueryParam("role"),
		PartyID: ctx.QueryParam("partyId"),
	})
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrders(orders))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	o, err := s.engine.GetOrder(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrder(o))
}

// ApproveOrder handles POST /api/v1/orders/:id/approve.
func (s *Server) ApproveOrder(ctx echo.Context) error {
	var req ApproveRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	o, err := s.engine.ApproveOrder(ctx.Request().Context(), ctx.Param("id"),
		services.Proof{Value: req.Value, Nonce: req.Nonce})
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrder(o))
}

// DeliverOrder handles POST /api/v1/orders/:id/deliver.
func (s *Server) DeliverOrder(ctx echo.Context) error {
	var req DeliverRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	o, err := s.engine.DeliverOrder(ctx.Request().Context(), ctx.Param("id"), req.Location.Lat, req.Location.Lng)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrder(o))
}

// PayOrder handles POST /api/v1/orders/:id/pay.
func (s *Server) PayOrder(ctx echo.Context) error {
	var req PayRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	o, err := s.engine.PayOrder(ctx.Request().Context(), ctx.Param("id"), req.Evidence)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrder(o))
}

// CancelOrder handles POST /api/v1/orders/:id/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	var req CancelRequest
	if err := ctx.Bind(&req); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	o, err := s.engine.CancelOrder(ctx.Request().Context(), ctx.Param("id"), req.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toOrder(o))
}

// ListEvents handles GET /api/v1/events?orderId=&sinceSeq=.
func (s *Server) ListEvents(ctx echo.Context) error {
	since, err := parseSinceSeq(ctx.QueryParam("sinceSeq"))
	if err != nil {
		return writeError(ctx, err)
	}

	events, err := s.engine.ListEvents(ctx.Request().Context(), queries.EventFilter{
		OrderID:  ctx.QueryParam("orderId"),
		SinceSeq: since,
	})
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, toEvents(events))
}

// StreamEvents handles GET /api/v1/events/stream as server-sent events. With
// sinceSeq the stream first replays the logged events after that sequence
// number and then continues live without gaps or repeats, as long as the
// observer keeps up.
func (s *Server) StreamEvents(ctx echo.Context) error {
	since, err := parseSinceSeq(ctx.QueryParam("sinceSeq"))
	if err != nil {
		return writeError(ctx, err)
	}
	replay := ctx.QueryParam("sinceSeq") != ""

	sub := s.engine.Subscribe()
	defer s.engine.Unsubscribe(sub)

	reqCtx := ctx.Request().Context()

	var backlog []event.Event
	if replay {
		backlog, err = s.engine.ListEvents(reqCtx, queries.EventFilter{SinceSeq: since})
		if err != nil {
			return writeError(ctx, err)
		}
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	// events published between Subscribe and the replay arrive twice; hub
	// delivery follows sequence order, so the repeats are a prefix of the
	// live stream and the first unseen event ends the overlap
	replayed := make(map[string]struct{}, len(backlog))
	for _, e := range backlog {
		if err := writeSSE(res, e); err != nil {
			return nil
		}
		replayed[e.ID().String()] = struct{}{}
	}
	res.Flush()

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-reqCtx.Done():
			return nil
		case <-keepAlive.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case e, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if len(replayed) > 0 {
				if _, seen := replayed[e.ID().String()]; seen {
					delete(replayed, e.ID().String())
					continue
				}
				clear(replayed)
			}
			if err := writeSSE(res, e); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

// GetScheduler handles GET /api/v1/scheduler.
func (s *Server) GetScheduler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, toSchedulerStatus(s.engine.SchedulerStatus()))
}

// StartScheduler handles POST /api/v1/scheduler/start.
func (s *Server) StartScheduler(ctx echo.Context) error {
	s.engine.StartScheduler()
	return ctx.JSON(http.StatusOK, toSchedulerStatus(s.engine.SchedulerStatus()))
}

// StopScheduler handles POST /api/v1/scheduler/stop.
func (s *Server) StopScheduler(ctx echo.Context) error {
	s.engine.StopScheduler()
	return ctx.JSON(http.StatusOK, toSchedulerStatus(s.engine.SchedulerStatus()))
}

// Reset handles POST /api/v1/admin/reset.
func (s *Server) Reset(ctx echo.Context) error {
	if err := s.engine.Reset(ctx.Request().Context()); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func writeSSE(res *echo.Response, e event.Event) error {
	data, err := json.Marshal(toEvent(e))
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(res, "id: %d\nevent: %s\ndata: %s\n\n", e.Sequence(), e.Type(), data)
	return err
}

func parseSinceSeq(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("sinceSeq", err)
	}
	return seq, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Kind:    "validation_error",
		Message: message,
	})
}

// writeError maps the engine's typed errors onto HTTP statuses.
func writeError(ctx echo.Context, err error) error {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrAlreadyInTargetStatus):
		status, kind = http.StatusConflict, "already_in_target_status"
	case errors.Is(err, errs.ErrTransitionIsInvalid):
		status, kind = http.StatusConflict, "invalid_transition"
	case errors.Is(err, errs.ErrProofVerificationFailed):
		status, kind = http.StatusUnprocessableEntity, "proof_verification_failed"
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		status, kind = http.StatusBadRequest, "validation_error"
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		ctx.Logger().Error(err)
		message = "Internal server error"
	}

	return ctx.JSON(status, Error{Code: status, Kind: kind, Message: message})
}
