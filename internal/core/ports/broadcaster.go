package ports

import "supplychain/internal/core/domain/model/event"

// Subscription is a live observer of published events.
type Subscription interface {
	ID() string

	// Events is closed when the subscription is removed.
	Events() <-chan event.Event

	// Dropped counts events that were not delivered because the subscriber
	// did not keep up.
	Dropped() uint64
}

// Broadcaster fans events out to every current subscriber. Publish never
// blocks on a slow subscriber.
type Broadcaster interface {
	Subscribe() Subscription

	// Unsubscribe is safe to call concurrently with Publish and more than once.
	Unsubscribe(sub Subscription)

	Publish(e event.Event)

	// Reset discards events buffered for subscribers but keeps the
	// subscriptions open.
	Reset()

	SubscriberCount() int
}
