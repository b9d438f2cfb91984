package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	reasonUnknownCode     = "unknown_code"
	reasonMalformedValues = "malformed_values"
	reasonInvalidRequest  = "invalid_request"
	reasonNonFinite       = "non_finite"
)

type metrics struct {
	registry *prometheus.Registry
	reports  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newMetrics(registry *prometheus.Registry) *metrics {
	m := &metrics{
		registry: registry,
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitness_tracker",
			Name:      "reports_total",
			Help:      "Workout reports computed, by training type.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fitness_tracker",
			Name:      "report_errors_total",
			Help:      "Workout packages rejected, by reason.",
		}, []string{"reason"}),
	}
	registry.MustRegister(m.reports, m.failures)
	return m
}

func (m *metrics) reportComputed(kind string) {
	m.reports.WithLabelValues(kind).Inc()
}

func (m *metrics) reportFailed(reason string) {
	m.failures.WithLabelValues(reason).Inc()
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
