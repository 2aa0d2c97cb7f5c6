package scheduleapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics holds the component's Prometheus collectors. Each component
// instance owns its registry so repeated construction in tests never
// collides with the default registry.
type metrics struct {
	registry *prometheus.Registry

	requestsTotal     *prometheus.CounterVec
	advisoryFallbacks *prometheus.CounterVec
	runDuration       prometheus.Histogram
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &metrics{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterflow_requests_total",
			Help: "Schedule requests processed, by outcome.",
		}, []string{"outcome"}),
		advisoryFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rosterflow_advisory_fallbacks_total",
			Help: "Pipeline stages that fell back to deterministic behavior.",
		}, []string{"stage"}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rosterflow_schedule_duration_seconds",
			Help:    "End-to-end scheduling run duration.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
}

// recordRun updates the counters for one finished run.
func (m *metrics) recordRun(outcome string, degradedStages []string, seconds float64) {
	m.requestsTotal.WithLabelValues(outcome).Inc()
	for _, stage := range degradedStages {
		m.advisoryFallbacks.WithLabelValues(stage).Inc()
	}
	m.runDuration.Observe(seconds)
}

// handler exposes the component's registry in Prometheus text format.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
