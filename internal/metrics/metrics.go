// Package metrics exposes Prometheus instruments for the catalog pipelines.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for mutations, deletions and view assembly.
type Metrics struct {
	registry *prometheus.Registry

	// Mutation outcomes by entity, op (create/update) and outcome
	Mutations *prometheus.CounterVec

	// Deletion outcomes by entity and final state
	Deletions *prometheus.CounterVec

	// Aggregation latency by view
	AggregationLatency *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "libris_mutations_total",
			Help: "Create and update outcomes by entity",
		}, []string{"entity", "op", "outcome"}), // outcome: "redisplay", "redirect", "existing", "error"

		Deletions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "libris_deletions_total",
			Help: "Dependency-checked deletion outcomes by entity",
		}, []string{"entity", "outcome"}),

		AggregationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "libris_aggregation_duration_seconds",
			Help:    "Duration of concurrent view assembly",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"view"}),
	}
}

// IncrementMutation records one create or update outcome.
func (m *Metrics) IncrementMutation(entity, op, outcome string) {
	if m != nil {
		m.Mutations.WithLabelValues(entity, op, outcome).Inc()
	}
}

// IncrementDeletion records one deletion outcome.
func (m *Metrics) IncrementDeletion(entity, outcome string) {
	if m != nil {
		m.Deletions.WithLabelValues(entity, outcome).Inc()
	}
}

// ObserveAggregation records how long assembling view took.
func (m *Metrics) ObserveAggregation(view string, d time.Duration) {
	if m != nil {
		m.AggregationLatency.WithLabelValues(view).Observe(d.Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
