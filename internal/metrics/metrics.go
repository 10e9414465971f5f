// Package metrics provides the centralized Prometheus registry for the
// preference service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "josaa_predictor",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint and status code",
	}, []string{"endpoint", "status"})
	RecordsScoredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "josaa_predictor",
		Name:      "records_scored_total",
		Help:      "Total cutoff records scored by the estimator",
	})
	DatasetRefreshesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "josaa_predictor",
		Name:      "dataset_refreshes_total",
		Help:      "Total cutoff dataset refreshes",
	})
	ExportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "josaa_predictor",
		Name:      "excel_exports_total",
		Help:      "Total Excel exports generated",
	})
)

// Gauge metrics
var (
	DatasetRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "josaa_predictor",
		Name:      "dataset_records",
		Help:      "Number of cutoff records in the current snapshot",
	})
)

// Histogram metrics
var (
	PreferenceGenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "josaa_predictor",
		Name:      "preference_generation_duration_seconds",
		Help:      "Time spent building one preference list",
		Buckets:   prometheus.DefBuckets,
	})
	PreferencesReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "josaa_predictor",
		Name:      "preferences_returned",
		Help:      "Number of preferences returned per request",
		Buckets:   []float64{0, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

// Registry returns the global registry, registering all metrics on first use.
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			RequestsTotal,
			RecordsScoredTotal,
			DatasetRefreshesTotal,
			ExportsTotal,
			DatasetRecords,
			PreferenceGenerationDuration,
			PreferencesReturned,
		)
	})
	return registry
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}
