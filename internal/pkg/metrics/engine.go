package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type EngineMetrics struct {
	reserveOutcomes *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	txRetries       prometheus.Counter
	sweepExpired    prometheus.Counter
	sweepFailures   prometheus.Counter
	outboxPublished *prometheus.CounterVec
	reserveDuration *prometheus.HistogramVec
}

var (
	engineOnce     sync.Once
	engineRegistry *EngineMetrics
)

// Engine returns the process-wide metrics, registered on first use.
func Engine() *EngineMetrics {
	engineOnce.Do(func() {
		engineRegistry = &EngineMetrics{
			reserveOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reservation_reserve_total",
				Help: "Reserve attempts by resource kind and outcome.",
			}, []string{"kind", "outcome"}),
			transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reservation_transitions_total",
				Help: "Committed lifecycle transitions by source and target status.",
			}, []string{"from", "to"}),
			txRetries: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "reservation_tx_retries_total",
				Help: "Transactions retried after lock timeout, deadlock or serialization failure.",
			}),
			sweepExpired: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "reservation_sweep_expired_total",
				Help: "Pending holds expired by the sweep.",
			}),
			sweepFailures: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "reservation_sweep_failures_total",
				Help: "Expired holds the sweep could not transition.",
			}),
			outboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "reservation_outbox_events_total",
				Help: "Outbox events handed to the publisher by result.",
			}, []string{"result"}),
			reserveDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "reservation_reserve_duration_seconds",
				Help:    "Latency of Reserve calls including retries.",
				Buckets: prometheus.DefBuckets,
			}, []string{"kind"}),
		}
		prometheus.MustRegister(
			engineRegistry.reserveOutcomes,
			engineRegistry.transitions,
			engineRegistry.txRetries,
			engineRegistry.sweepExpired,
			engineRegistry.sweepFailures,
			engineRegistry.outboxPublished,
			engineRegistry.reserveDuration,
		)
	})
	return engineRegistry
}

func (m *EngineMetrics) ObserveReserve(kind, outcome string, seconds float64) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.reserveOutcomes.WithLabelValues(kind, outcome).Inc()
	m.reserveDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *EngineMetrics) ObserveTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *EngineMetrics) IncTxRetry() {
	if m == nil {
		return
	}
	m.txRetries.Inc()
}

func (m *EngineMetrics) AddSweepExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepExpired.Add(float64(n))
}

func (m *EngineMetrics) AddSweepFailures(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sweepFailures.Add(float64(n))
}

func (m *EngineMetrics) ObserveOutbox(result string) {
	if m == nil {
		return
	}
	m.outboxPublished.WithLabelValues(result).Inc()
}
