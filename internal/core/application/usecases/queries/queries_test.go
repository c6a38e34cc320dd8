package queries_test

import (
	"testing"
	"time"

	"supplychain/internal/adapters/out/memory/eventlog"
	"supplychain/internal/adapters/out/memory/orderstore"
	"supplychain/internal/core/application/usecases/queries"
	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, store *orderstore.Store, supplier, buyer, logistics string) *order.Order {
	t.Helper()

	parties, err := order.NewParties(supplier, buyer, logistics)
	require.NoError(t, err)
	terms, err := order.NewTerms(10, "enc:aa", kernel.Commitment{}, kernel.Commitment{})
	require.NoError(t, err)
	destination, err := kernel.NewLocation(40.71, -74.00)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), parties, terms, destination, time.Now())
	require.NoError(t, err)

	require.NoError(t, store.Create(t.Context(), o, nil))
	return o
}

func TestGetOrderQueryHandler_Handle(t *testing.T) {
	store := orderstore.NewStore()
	o := seedOrder(t, store, "acme", "globex", "")
	h := queries.NewGetOrderQueryHandler(store)

	t.Run("should return the stored order", func(t *testing.T) {
		query, err := queries.NewGetOrderQuery(o.ID())
		require.NoError(t, err)

		got, err := h.Handle(t.Context(), query)

		require.NoError(t, err)
		assert.True(t, got.IsEqual(o))
	})

	t.Run("should report unknown orders", func(t *testing.T) {
		query, err := queries.NewGetOrderQuery(kernel.NewUUID())
		require.NoError(t, err)

		_, err = h.Handle(t.Context(), query)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should reject queries built without the constructor", func(t *testing.T) {
		_, err := h.Handle(t.Context(), queries.GetOrderQuery{})

		require.ErrorIs(t, err, queries.ErrGetOrderQueryIsNotConstructed)
	})
}

func TestListOrdersQueryHandler_Handle(t *testing.T) {
	store := orderstore.NewStore()
	first := seedOrder(t, store, "acme", "globex", "fastfreight")
	second := seedOrder(t, store, "initech", "acme", "")
	third := seedOrder(t, store, "initech", "globex", "")
	_, err := store.Apply(t.Context(), third.ID(), func(o *order.Order) error {
		return o.Cancel("duplicate", time.Now())
	})
	require.NoError(t, err)

	h := queries.NewListOrdersQueryHandler(store)

	ids := func(orders []*order.Order) []kernel.UUID {
		out := make([]kernel.UUID, 0, len(orders))
		for _, o := range orders {
			out = append(out, o.ID())
		}
		return out
	}

	tests := []struct {
		name   string
		filter queries.OrderFilter
		want   []kernel.UUID
	}{
		{"should list everything without a filter", queries.OrderFilter{}, []kernel.UUID{first.ID(), second.ID(), third.ID()}},
		{"should filter by status", queries.OrderFilter{Status: "cancelled"}, []kernel.UUID{third.ID()}},
		{"should filter by role", queries.OrderFilter{Role: "buyer", PartyID: "acme"}, []kernel.UUID{second.ID()}},
		{"should match a party in any role", queries.OrderFilter{PartyID: "acme"}, []kernel.UUID{first.ID(), second.ID()}},
		{"should combine status and role", queries.OrderFilter{Status: "created", Role: "supplier", PartyID: "initech"}, []kernel.UUID{second.ID()}},
		{"should match logistics providers", queries.OrderFilter{Role: "logistics", PartyID: "fastfreight"}, []kernel.UUID{first.ID()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := queries.NewListOrdersQuery(tt.filter)
			require.NoError(t, err)

			got, err := h.Handle(t.Context(), query)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestNewListOrdersQuery_InvalidFilter(t *testing.T) {
	t.Run("should reject unknown statuses", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(queries.OrderFilter{Status: "shipped"})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject unknown roles", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(queries.OrderFilter{Role: "broker", PartyID: "x"})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should require a party id with a role", func(t *testing.T) {
		_, err := queries.NewListOrdersQuery(queries.OrderFilter{Role: "buyer"})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})
}

func TestListEventsQueryHandler_Handle(t *testing.T) {
	log := eventlog.NewLog()
	orderA, orderB := kernel.NewUUID(), kernel.NewUUID()
	for _, id := range []kernel.UUID{orderA, orderB, orderA, orderB, orderA} {
		e, err := event.NewEvent(id, event.GPSUpdate, map[string]any{}, time.Now())
		require.NoError(t, err)
		_, err = log.Append(t.Context(), e)
		require.NoError(t, err)
	}
	h := queries.NewListEventsQueryHandler(log)

	seqs := func(events []event.Event) []uint64 {
		out := make([]uint64, 0, len(events))
		for _, e := range events {
			out = append(out, e.Sequence())
		}
		return out
	}

	tests := []struct {
		name   string
		filter queries.EventFilter
		want   []uint64
	}{
		{"should list every event", queries.EventFilter{}, []uint64{1, 2, 3, 4, 5}},
		{"should replay since a sequence number", queries.EventFilter{SinceSeq: 3}, []uint64{4, 5}},
		{"should filter by order", queries.EventFilter{OrderID: orderA.String()}, []uint64{1, 3, 5}},
		{"should combine order and sequence", queries.EventFilter{OrderID: orderB.String(), SinceSeq: 2}, []uint64{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := queries.NewListEventsQuery(tt.filter)
			require.NoError(t, err)

			got, err := h.Handle(t.Context(), query)

			require.NoError(t, err)
			assert.Equal(t, tt.want, seqs(got))
		})
	}

	t.Run("should reject malformed order ids", func(t *testing.T) {
		_, err := queries.NewListEventsQuery(queries.EventFilter{OrderID: "not-a-uuid"})
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}
