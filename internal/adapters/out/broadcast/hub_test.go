package broadcast_test

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"supplychain/internal/adapters/out/broadcast"
	"supplychain/internal/adapters/out/metrics"
	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(buffer int) *broadcast.Hub {
	return broadcast.NewHub(buffer, metrics.Nop{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func sequenced(t *testing.T, orderID kernel.UUID, seq uint64) event.Event {
	t.Helper()
	e, err := event.NewEvent(orderID, event.GPSUpdate, map[string]any{"seq": seq}, time.Now())
	require.NoError(t, err)
	return e.WithSequence(seq)
}

func receive(t *testing.T, ch <-chan event.Event) event.Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return event.Event{}
	}
}

func assertEmpty(t *testing.T, ch <-chan event.Event) {
	t.Helper()
	select {
	case e, ok := <-ch:
		if ok {
			t.Fatalf("unexpected event %d", e.Sequence())
		}
	default:
	}
}

func TestHub_PublishDeliversToEverySubscriber(t *testing.T) {
	hub := newHub(8)
	a := hub.Subscribe()
	b := hub.Subscribe()
	orderID := kernel.NewUUID()

	hub.Publish(sequenced(t, orderID, 1))
	hub.Publish(sequenced(t, orderID, 2))

	for _, sub := range []interface{ Events() <-chan event.Event }{a, b} {
		assert.Equal(t, uint64(1), receive(t, sub.Events()).Sequence())
		assert.Equal(t, uint64(2), receive(t, sub.Events()).Sequence())
	}
	assert.Equal(t, 2, hub.SubscriberCount())
}

func TestHub_SubscribersOnlySeeLaterEvents(t *testing.T) {
	// Arrange
	hub := newHub(8)
	orderID := kernel.NewUUID()
	hub.Publish(sequenced(t, orderID, 1))

	// Act
	late := hub.Subscribe()
	hub.Publish(sequenced(t, orderID, 2))

	// Assert
	assert.Equal(t, uint64(2), receive(t, late.Events()).Sequence())
	assertEmpty(t, late.Events())
}

func TestHub_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := newHub(2)
	slow := hub.Subscribe()
	fast := hub.Subscribe()
	orderID := kernel.NewUUID()

	received := make(chan uint64, 10)
	go func() {
		for e := range fast.Events() {
			received <- e.Sequence()
		}
	}()

	done := make(chan struct{})
	go func() {
		for seq := uint64(1); seq <= 5; seq++ {
			hub.Publish(sequenced(t, orderID, seq))
			time.Sleep(5 * time.Millisecond)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	assert.Equal(t, uint64(3), slow.Dropped())
	assert.Equal(t, uint64(1), receive(t, slow.Events()).Sequence())
	assert.Equal(t, uint64(2), receive(t, slow.Events()).Sequence())

	for want := uint64(1); want <= 5; want++ {
		select {
		case got := <-received:
			assert.Equal(t, want, got)
		case <-time.After(time.Second):
			t.Fatalf("fast subscriber missed event %d", want)
		}
	}
	assert.Zero(t, fast.Dropped())
}

func TestHub_DuplicatePublishIsSuppressed(t *testing.T) {
	hub := newHub(8)
	sub := hub.Subscribe()
	e := sequenced(t, kernel.NewUUID(), 1)

	hub.Publish(e)
	hub.Publish(e)

	receive(t, sub.Events())
	assertEmpty(t, sub.Events())
}

func TestHub_RepeatedTerminalEventIsSuppressed(t *testing.T) {
	// Arrange
	hub := newHub(8)
	sub := hub.Subscribe()
	orderID := kernel.NewUUID()
	paid, err := event.NewEvent(orderID, event.PaymentReleased, map[string]any{}, time.Now())
	require.NoError(t, err)
	paid = paid.WithSequence(4)

	// Act
	hub.Publish(paid)
	hub.Publish(paid)
	hub.Publish(sequenced(t, kernel.NewUUID(), 5))

	// Assert
	assert.Equal(t, event.PaymentReleased, receive(t, sub.Events()).Type())
	assert.Equal(t, uint64(5), receive(t, sub.Events()).Sequence())
	assertEmpty(t, sub.Events())
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := newHub(8)
	sub := hub.Subscribe()

	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)

	_, ok := <-sub.Events()
	assert.False(t, ok, "channel is closed")
	assert.Zero(t, hub.SubscriberCount())

	hub.Publish(sequenced(t, kernel.NewUUID(), 1))
}

func TestHub_UnsubscribeRacesWithPublish(t *testing.T) {
	hub := newHub(1)
	orderID := kernel.NewUUID()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for seq := uint64(1); seq <= 500; seq++ {
			hub.Publish(sequenced(t, orderID, seq))
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			hub.Unsubscribe(hub.Subscribe())
		}
	}()
	wg.Wait()

	assert.Zero(t, hub.SubscriberCount())
}

func TestHub_ResetDiscardsBufferedEvents(t *testing.T) {
	hub := newHub(8)
	sub := hub.Subscribe()
	orderID := kernel.NewUUID()
	hub.Publish(sequenced(t, orderID, 1))
	hub.Publish(sequenced(t, orderID, 2))

	hub.Reset()

	assertEmpty(t, sub.Events())
	assert.Equal(t, 1, hub.SubscriberCount())

	hub.Publish(sequenced(t, kernel.NewUUID(), 1))
	assert.Equal(t, uint64(1), receive(t, sub.Events()).Sequence())
}

func TestHub_Close(t *testing.T) {
	hub := newHub(8)
	sub := hub.Subscribe()

	hub.Close()

	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.Zero(t, hub.SubscriberCount())
}
