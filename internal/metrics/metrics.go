// Package metrics provides Prometheus instrumentation for the
// conversion service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private
// registry, so tests can construct independent instances.
type Metrics struct {
	Conversions *prometheus.CounterVec
	InFlight    prometheus.Gauge
	Duration    *prometheus.HistogramVec
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	registry *prometheus.Registry
}

// New returns a Metrics with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Conversions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "convertd_conversions_total",
			Help: "Conversion requests by route and outcome.",
		}, []string{"route", "outcome"}),
		InFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "convertd_conversions_in_flight",
			Help: "Conversions currently in progress.",
		}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "convertd_conversion_duration_seconds",
			Help:    "Conversion duration by route.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		}, []string{"route"}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "convertd_cache_hits_total",
			Help: "Conversion requests served from the result cache.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "convertd_cache_misses_total",
			Help: "Conversion requests that missed the result cache.",
		}),
		registry: reg,
	}
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
