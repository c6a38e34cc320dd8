package commands_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"supplychain/internal/adapters/out/broadcast"
	"supplychain/internal/adapters/out/memory/eventlog"
	"supplychain/internal/adapters/out/memory/orderstore"
	"supplychain/internal/adapters/out/metrics"
	"supplychain/internal/core/application/usecases/commands"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/domain/services"
	"supplychain/internal/core/ports"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingMirror struct {
	mu      sync.Mutex
	entries []ports.LedgerEntry
}

func (m *recordingMirror) Mirror(entry ports.LedgerEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
}

func (m *recordingMirror) Transitions() []order.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]order.Transition, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Transition)
	}
	return out
}

type fixture struct {
	pipeline *commands.TransitionPipeline
	store    *orderstore.Store
	events   *eventlog.Log
	hub      *broadcast.Hub
	mirror   *recordingMirror
	clock    *fakeClock
	logger   *slog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		store:  orderstore.NewStore(),
		events: eventlog.NewLog(),
		hub:    broadcast.NewHub(256, metrics.Nop{}, logger),
		mirror: &recordingMirror{},
		clock:  newFakeClock(),
		logger: logger,
	}
	f.pipeline = commands.NewTransitionPipeline(
		f.store, f.events, f.hub, f.mirror,
		services.NewTransitionValidator(services.NewCommitmentVerifier()),
		metrics.Nop{}, logger,
	).WithClock(f.clock.Now)
	t.Cleanup(f.hub.Close)
	return f
}

const (
	priceValue = "1250.00"
	priceNonce = "n-42"
)

func (f *fixture) createOrder(t *testing.T) *order.Order {
	t.Helper()

	commitment := services.NewCommitmentVerifier().Commit(priceValue, priceNonce)
	cmd, err := commands.NewCreateOrderCommand(commands.CreateOrderParams{
		SupplierID:      "acme",
		BuyerID:         "globex",
		LogisticsID:     "fastfreight",
		Quantity:        100,
		EncryptedPrice:  "enc:3f9a",
		PriceCommitment: commitment.String(),
		DestinationLat:  52.52,
		DestinationLng:  13.40,
	})
	require.NoError(t, err)

	h := commands.NewCreateOrderCommandHandler(f.pipeline)
	o, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return o
}

func (f *fixture) approveOrder(t *testing.T, o *order.Order) *order.Order {
	t.Helper()

	cmd, err := commands.NewApproveOrderCommand(o.ID(), services.Proof{Value: priceValue, Nonce: priceNonce})
	require.NoError(t, err)

	h := commands.NewApproveOrderCommandHandler(f.pipeline)
	approved, err := h.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return approved
}
