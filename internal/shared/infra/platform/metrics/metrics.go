// Package metrics expone métricas Prometheus de las consultas de pistas.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	StatusOK       = "ok"
	StatusEmpty    = "empty"
	StatusInvalid  = "invalid"
	StatusBackend  = "backend_error"
	defaultNS      = "metamood"
	defaultSubsys  = "tracks"
	EndpointTracks = "tracks"
	EndpointCount  = "count"
	EndpointAvg    = "averages"
)

// QueryMetrics agrupa los colectores registrados en un Registry propio.
// Un *QueryMetrics nil es válido y no registra nada.
type QueryMetrics struct {
	registry *prometheus.Registry

	queriesTotal     *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	pageSize         prometheus.Histogram
	validationErrors prometheus.Counter
}

// NewQueryMetrics crea y registra las métricas. Si registry es nil se usa uno nuevo.
func NewQueryMetrics(registry *prometheus.Registry) *QueryMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &QueryMetrics{
		registry: registry,
		queriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: defaultNS,
				Subsystem: defaultSubsys,
				Name:      "queries_total",
				Help:      "Total number of track queries by endpoint and outcome",
			},
			[]string{"endpoint", "status"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: defaultNS,
				Subsystem: defaultSubsys,
				Name:      "query_duration_seconds",
				Help:      "Duration of track queries including storage materialization",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"endpoint"},
		),
		pageSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: defaultNS,
				Subsystem: defaultSubsys,
				Name:      "page_size_returned",
				Help:      "Number of tracks returned per page",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		validationErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: defaultNS,
				Subsystem: defaultSubsys,
				Name:      "validation_errors_total",
				Help:      "Total number of rejected query parameter sets",
			},
		),
	}

	registry.MustRegister(m.queriesTotal, m.queryDuration, m.pageSize, m.validationErrors)
	return m
}

// ObserveQuery registra el resultado de una consulta.
func (m *QueryMetrics) ObserveQuery(endpoint, status string, elapsed time.Duration, returned int) {
	if m == nil {
		return
	}
	m.queriesTotal.WithLabelValues(endpoint, status).Inc()
	m.queryDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if endpoint == EndpointTracks && (status == StatusOK || status == StatusEmpty) {
		m.pageSize.Observe(float64(returned))
	}
	if status == StatusInvalid {
		m.validationErrors.Inc()
	}
}

// QueriesTotal devuelve el contador de un endpoint y resultado.
func (m *QueryMetrics) QueriesTotal(endpoint, status string) prometheus.Counter {
	return m.queriesTotal.WithLabelValues(endpoint, status)
}

// Registry devuelve el registry subyacente (útil en tests).
func (m *QueryMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler devuelve el endpoint HTTP de Prometheus para este registry.
func (m *QueryMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
