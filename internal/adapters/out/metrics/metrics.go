// Package metrics exposes core measurements as Prometheus collectors.
package metrics

import (
	"time"

	"supplychain/internal/core/domain/model/event"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	_ ports.Metrics = (*Prometheus)(nil)
	_ ports.Metrics = Nop{}
)

// Prometheus implements ports.Metrics with collectors registered on a
// caller-supplied registerer, so several engines can live in one process.
type Prometheus struct {
	transitionsTotal *prometheus.CounterVec
	eventsTotal      *prometheus.CounterVec
	droppedTotal     prometheus.Counter
	activeSessions   prometheus.Gauge
	tickDuration     prometheus.Histogram
	ledgerTotal      *prometheus.CounterVec
}

func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	m := &Prometheus{
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supplychain_transitions_total",
				Help: "Total number of order transitions by transition and result",
			},
			[]string{"transition", "result"},
		),
		eventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supplychain_events_total",
				Help: "Total number of events appended to the event log",
			},
			[]string{"type"},
		),
		droppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "supplychain_subscriber_dropped_events_total",
				Help: "Total number of events dropped because a subscriber buffer was full",
			},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "supplychain_tracking_active_sessions",
				Help: "Number of active shipment tracking sessions",
			},
		),
		tickDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "supplychain_tracking_tick_duration_seconds",
				Help:    "Duration of tracking scheduler ticks",
				Buckets: prometheus.DefBuckets,
			},
		),
		ledgerTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "supplychain_ledger_records_total",
				Help: "Total number of ledger mirror attempts by transition and result",
			},
			[]string{"transition", "result"},
		),
	}

	for _, c := range []prometheus.Collector{
		m.transitionsTotal, m.eventsTotal, m.droppedTotal, m.activeSessions, m.tickDuration, m.ledgerTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Prometheus) TransitionObserved(transition order.Transition, result string) {
	m.transitionsTotal.WithLabelValues(string(transition), result).Inc()
}

func (m *Prometheus) EventAppended(t event.Type) {
	m.eventsTotal.WithLabelValues(string(t)).Inc()
}

func (m *Prometheus) DeliveryDropped() {
	m.droppedTotal.Inc()
}

func (m *Prometheus) ActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

func (m *Prometheus) TickCompleted(d time.Duration) {
	m.tickDuration.Observe(d.Seconds())
}

func (m *Prometheus) LedgerRecorded(transition order.Transition, result string) {
	m.ledgerTotal.WithLabelValues(string(transition), result).Inc()
}

// Nop discards every measurement.
type Nop struct{}

func (Nop) TransitionObserved(order.Transition, string) {}
func (Nop) EventAppended(event.Type)                    {}
func (Nop) DeliveryDropped()                            {}
func (Nop) ActiveSessions(int)                          {}
func (Nop) TickCompleted(time.Duration)                 {}
func (Nop) LedgerRecorded(order.Transition, string)     {}
