package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jpalmerr/gardenwatch/internal/poller"
)

// Prometheus metrics for the polling session

var (
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gardenwatch_cycles_total",
		Help: "Polling cycles by outcome",
	}, []string{"outcome"}) // outcome: ok|transport_error|protocol_error|disconnected|cancelled

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gardenwatch_request_duration_seconds",
		Help:    "Garden server update request latency",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"outcome"})

	ConsecutiveFailures = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gardenwatch_consecutive_failures",
		Help: "Current failure streak",
	})

	LastTick = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gardenwatch_last_tick",
		Help: "Highest tick applied from the garden server",
	})

	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "gardenwatch_connected",
		Help: "Session mode (1=connected, 0=disconnected)",
	})

	DisconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gardenwatch_disconnects_total",
		Help: "Times the failure streak exceeded the threshold",
	})

	ReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gardenwatch_reconnects_total",
		Help: "Times the recovery control was activated",
	})
)

// ObserveCycle records one cycle result.
func ObserveCycle(r poller.CycleResult) {
	outcome := string(r.Outcome)
	CyclesTotal.WithLabelValues(outcome).Inc()
	ConsecutiveFailures.Set(float64(r.Failures))
	LastTick.Set(r.Tick)

	if r.Outcome == poller.OutcomeDisconnected {
		DisconnectsTotal.Inc()
		Connected.Set(0)
		return
	}
	Connected.Set(1)
	if r.Outcome != poller.OutcomeCancelled {
		RequestDuration.WithLabelValues(outcome).Observe(r.Latency.Seconds())
	}
}

// ObserveReconnect records a recovery control activation.
func ObserveReconnect() {
	ReconnectsTotal.Inc()
	ConsecutiveFailures.Set(0)
	Connected.Set(1)
}
