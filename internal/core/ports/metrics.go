package ports

import (
	"time"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/order"
)

// Transition results reported to Metrics.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Metrics receives operational measurements from the core and its adapters.
type Metrics interface {
	TransitionObserved(transition order.Transition, result string)
	EventAppended(t event.Type)
	DeliveryDropped()
	ActiveSessions(n int)
	TickCompleted(d time.Duration)
	LedgerRecorded(transition order.Transition, result string)
}
