package jobs_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"supplychain/internal/adapters/out/broadcast"
	"supplychain/internal/adapters/out/ledger/async"
	"supplychain/internal/adapters/out/memory/eventlog"
	"supplychain/internal/adapters/out/memory/orderstore"
	"supplychain/internal/adapters/out/metrics"
	"supplychain/internal/core/application/usecases/commands"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	pipeline *commands.TransitionPipeline
	tracker  *commands.TrackShipmentsCommandHandler
	store    *orderstore.Store
	logger   *slog.Logger
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := orderstore.NewStore()
	hub := broadcast.NewHub(16, metrics.Nop{}, logger)
	t.Cleanup(hub.Close)

	pipeline := commands.NewTransitionPipeline(
		store, eventlog.NewLog(), hub, async.Discard{},
		services.NewTransitionValidator(services.NewCommitmentVerifier()),
		metrics.Nop{}, logger,
	)

	cfg := commands.DefaultTrackingConfig()
	cfg.TotalSteps = 3
	cfg.PaymentDelay = 0
	tracker, err := commands.NewTrackShipmentsCommandHandler(pipeline, nil, cfg, metrics.Nop{}, logger)
	require.NoError(t, err)

	return &harness{pipeline: pipeline, tracker: tracker, store: store, logger: logger}
}

func (h *harness) approvedOrder(t *testing.T) *order.Order {
	t.Helper()

	commitment := services.NewCommitmentVerifier().Commit("7", "salt")
	createCmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		SupplierID:         "acme",
		BuyerID:            "globex",
		Quantity:           7,
		EncryptedPrice:     "enc:01",
		QuantityCommitment: commitment.String(),
		DestinationLat:     35.68,
		DestinationLng:     139.69,
	})
	require.NoError(t, err)
	create := commands.NewCreateOrderCommandHandler(h.pipeline)
	o, err := create.Handle(t.Context(), createCmd)
	require.NoError(t, err)

	approveCmd, err := commands.NewApproveOrderCommand(o.ID(), services.Proof{Value: "7", Nonce: "salt"})
	require.NoError(t, err)
	approve := commands.NewApproveOrderCommandHandler(h.pipeline)
	o, err = approve.Handle(t.Context(), approveCmd)
	require.NoError(t, err)
	return o
}

func TestTrackingJob_DrivesOrdersToPaid(t *testing.T) {
	// Arrange
	h := newHarness(t)
	o := h.approvedOrder(t)

	// Act
	job := jobs.NewTrackingJob(h.tracker, 10*time.Millisecond, h.logger)
	job.Start()
	t.Cleanup(job.Stop)

	// Assert
	require.Eventually(t, func() bool {
		stored, err := h.store.Get(t.Context(), o.ID())
		return err == nil && stored.Status() == order.Paid
	}, 5*time.Second, 10*time.Millisecond)
}

func TestTrackingJob_StartStop(t *testing.T) {
	h := newHarness(t)
	job := jobs.NewTrackingJob(h.tracker, 20*time.Millisecond, h.logger)

	t.Run("should not be running before start", func(t *testing.T) {
		assert.False(t, job.Running())
	})

	t.Run("should tolerate repeated starts", func(t *testing.T) {
		job.Start()
		job.Start()
		assert.True(t, job.Running())
	})

	t.Run("should tolerate repeated stops", func(t *testing.T) {
		job.Stop()
		job.Stop()
		assert.False(t, job.Running())
	})

	t.Run("should not tick while stopped", func(t *testing.T) {
		o := h.approvedOrder(t)
		time.Sleep(60 * time.Millisecond)

		stored, err := h.store.Get(t.Context(), o.ID())
		require.NoError(t, err)
		assert.Equal(t, order.Approved, stored.Status())
	})

	t.Run("should resume after a restart", func(t *testing.T) {
		job.Start()
		t.Cleanup(job.Stop)

		assert.Eventually(t, func() bool {
			orders, err := h.store.ListByStatus(t.Context(), order.Approved)
			return err == nil && len(orders) == 0
		}, 5*time.Second, 10*time.Millisecond)
	})
}

func TestNewTrackingJob_DefaultPeriod(t *testing.T) {
	// Arrange
	h := newHarness(t)

	// Act
	job := jobs.NewTrackingJob(h.tracker, 0, h.logger)

	// Assert
	assert.Equal(t, jobs.DefaultTickPeriod, job.Period())
}

func TestTrackingJob_RunOnce(t *testing.T) {
	// Arrange
	h := newHarness(t)
	o := h.approvedOrder(t)
	job := jobs.NewTrackingJob(h.tracker, time.Hour, h.logger)

	// Act
	require.NoError(t, job.RunOnce(t.Context()))

	// Assert
	stored, err := h.store.Get(t.Context(), o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.InTransit, stored.Status())
}

func TestJobManager_Status(t *testing.T) {
	h := newHarness(t)
	h.approvedOrder(t)
	job := jobs.NewTrackingJob(h.tracker, time.Hour, h.logger)
	manager := jobs.NewJobManager(job, h.tracker)

	require.NoError(t, job.RunOnce(t.Context()))
	assert.Equal(t, jobs.Status{Running: false, TickPeriod: time.Hour, ActiveSessionCount: 1}, manager.Status())

	manager.StartAll()
	assert.True(t, manager.Status().Running)

	manager.StopAll()
	assert.False(t, manager.Status().Running)
}
