package eventlog_test

import (
	"sync"
	"testing"
	"time"

	"supplychain/internal/adapters/out/memory/eventlog"
	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvent(t *testing.T, orderID kernel.UUID, typ event.Type) event.Event {
	t.Helper()
	e, err := event.NewEvent(orderID, typ, nil, time.Now())
	require.NoError(t, err)
	return e
}

func TestLog_Append(t *testing.T) {
	log := eventlog.NewLog()
	orderID := kernel.NewUUID()

	first, err := log.Append(t.Context(), newEvent(t, orderID, event.ContractCreated))
	require.NoError(t, err)
	second, err := log.Append(t.Context(), newEvent(t, orderID, event.ContractApproved))
	require.NoError(t, err)

	assert.Equal(t, uint64(1), first.Sequence())
	assert.Equal(t, uint64(2), second.Sequence())

	t.Run("should reject unconstructed events", func(t *testing.T) {
		_, err := log.Append(t.Context(), event.Event{})

		require.ErrorIs(t, err, event.ErrEventIsNotConstructed)
	})
}

func TestLog_Queries(t *testing.T) {
	log := eventlog.NewLog()
	a, b := kernel.NewUUID(), kernel.NewUUID()

	for _, e := range []event.Event{
		newEvent(t, a, event.ContractCreated),
		newEvent(t, b, event.ContractCreated),
		newEvent(t, a, event.ContractApproved),
		newEvent(t, kernel.UUID{}, event.ContractCancelled),
		newEvent(t, a, event.GPSUpdate),
	} {
		_, err := log.Append(t.Context(), e)
		require.NoError(t, err)
	}

	all, err := log.List(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 5)

	forA, err := log.ListByOrder(t.Context(), a)
	require.NoError(t, err)
	require.Len(t, forA, 3)
	assert.Equal(t, []event.Type{event.ContractCreated, event.ContractApproved, event.GPSUpdate},
		[]event.Type{forA[0].Type(), forA[1].Type(), forA[2].Type()})
	assert.Less(t, forA[0].Sequence(), forA[1].Sequence())

	again, err := log.ListByOrder(t.Context(), a)
	require.NoError(t, err)
	assert.Equal(t, forA, again, "lookups are restartable")

	since, err := log.ListSince(t.Context(), 3)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, uint64(4), since[0].Sequence())

	none, err := log.ListSince(t.Context(), 5)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLog_ConcurrentAppendsGetUniqueSequences(t *testing.T) {
	log := eventlog.NewLog()
	orderID := kernel.NewUUID()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := log.Append(t.Context(), newEvent(t, orderID, event.GPSUpdate))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := log.List(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 100)
	for i, e := range all {
		assert.Equal(t, uint64(i+1), e.Sequence())
	}
}

func TestLog_Reset(t *testing.T) {
	log := eventlog.NewLog()
	orderID := kernel.NewUUID()
	_, err := log.Append(t.Context(), newEvent(t, orderID, event.ContractCreated))
	require.NoError(t, err)

	require.NoError(t, log.Reset(t.Context()))

	all, err := log.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, all)
	forOrder, err := log.ListByOrder(t.Context(), orderID)
	require.NoError(t, err)
	assert.Empty(t, forOrder)

	next, err := log.Append(t.Context(), newEvent(t, orderID, event.ContractCreated))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next.Sequence())
}
