package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate. Watch for: sudden drops (service down) or spikes (traffic surge).
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request. Watch for: p95/p99 latency increases.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight. Watch for: saturation, capacity limits.
	HTTPRequestsInFlight prometheus.Gauge

	// Weather-data provider call rate. Watch for: error vs success ratio.
	WeatherAPICallsTotal *prometheus.CounterVec

	// Weather-data provider latency. Watch for: p95 > 2s (upstream degradation).
	WeatherAPIDuration *prometheus.HistogramVec

	// Generative endpoint call rate by status.
	GenerateCallsTotal *prometheus.CounterVec

	// Generative endpoint latency. Long tail expected; buckets reach 60s.
	GenerateDuration *prometheus.HistogramVec

	// Historical fetches that were skipped after an individual-year failure.
	// Watch for: sustained increases = degraded statistic quality.
	HistoricalFetchFailuresTotal prometheus.Counter

	// Analyses abandoned by the 60s soft timeout (mapped to 504).
	AnalysisTimeoutsTotal prometheus.Counter

	// External call errors by provider and category.
	ExternalErrorsTotal *prometheus.CounterVec

	// Rate limit denials. Watch for: overload, capacity exceeded.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of weather-data provider calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "Weather-data provider latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"status"},
	)
	GenerateCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generateCallsTotal",
			Help: "Total number of generative endpoint calls",
		},
		[]string{"status"},
	)
	GenerateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generateDurationSeconds",
			Help:    "Generative endpoint latency in seconds (per request)",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60},
		},
		[]string{"status"},
	)
	HistoricalFetchFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "historicalFetchFailuresTotal",
			Help: "Historical single-year fetches that failed and were omitted",
		},
	)
	AnalysisTimeoutsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "analysisTimeoutsTotal",
			Help: "Analyses abandoned by the soft timeout",
		},
	)
	ExternalErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "externalErrorsTotal",
			Help: "External call errors by provider and category",
		},
		[]string{"provider", "category"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		GenerateCallsTotal, GenerateDuration,
		HistoricalFetchFailuresTotal, AnalysisTimeoutsTotal,
		ExternalErrorsTotal, RateLimitDeniedTotal,
	)
}

// RecordExternalError increments the error counter for an external provider.
func RecordExternalError(provider, category string) {
	if category == "" {
		category = "unknown"
	}
	ExternalErrorsTotal.WithLabelValues(provider, category).Inc()
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
