// Package syncmetrics exposes Prometheus metrics for the synchronization
// primitives and the verification scenarios that drive them.
package syncmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Buffer metrics
	BufferOperationsTotal *prometheus.CounterVec
	BufferWaitsTotal      *prometheus.CounterVec
	BufferSize            *prometheus.GaugeVec

	// Scenario metrics
	ScenarioRunsTotal *prometheus.CounterVec
	ScenarioDuration  *prometheus.HistogramVec
}

// NewMetrics creates all metrics and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		BufferOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synclab_buffer_operations_total",
				Help: "Total number of completed bounded buffer operations",
			},
			[]string{"buffer", "operation"},
		),
		BufferWaitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synclab_buffer_waits_total",
				Help: "Total number of times a buffer operation parked on a wait condition",
			},
			[]string{"buffer", "condition"},
		),
		BufferSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "synclab_buffer_size",
				Help: "Number of items held by a bounded buffer",
			},
			[]string{"buffer"},
		),
		ScenarioRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synclab_scenario_runs_total",
				Help: "Total number of scenario runs",
			},
			[]string{"scenario", "result"},
		),
		ScenarioDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "synclab_scenario_duration_seconds",
				Help:    "Scenario duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
			[]string{"scenario"},
		),
	}

	registry.MustRegister(
		m.BufferOperationsTotal,
		m.BufferWaitsTotal,
		m.BufferSize,
		m.ScenarioRunsTotal,
		m.ScenarioDuration,
	)

	return m
}

// RecordBufferOperation records a completed put or take and the size the
// buffer was left at.
func (m *Metrics) RecordBufferOperation(buffer, operation string, size int) {
	m.BufferOperationsTotal.WithLabelValues(buffer, operation).Inc()
	m.BufferSize.WithLabelValues(buffer).Set(float64(size))
}

// RecordBufferWait records that an operation parked on condition.
func (m *Metrics) RecordBufferWait(buffer, condition string) {
	m.BufferWaitsTotal.WithLabelValues(buffer, condition).Inc()
}

// RecordScenario records a finished scenario run.
func (m *Metrics) RecordScenario(scenario string, passed bool, duration time.Duration) {
	result := "pass"
	if !passed {
		result = "fail"
	}

	m.ScenarioRunsTotal.WithLabelValues(scenario, result).Inc()
	m.ScenarioDuration.WithLabelValues(scenario).Observe(duration.Seconds())
}
