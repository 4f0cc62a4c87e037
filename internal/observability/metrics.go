package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	attemptsTotal         *prometheus.CounterVec
	scoringLatencySeconds prometheus.Histogram
	optionFallbackTotal   prometheus.Counter
	adminRequestsTotal    *prometheus.CounterVec
	adminLatencySeconds   *prometheus.HistogramVec
	adminErrorsTotal      *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		attemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cbt_attempts_total",
			Help: "Total number of scored assessment attempts.",
		}, []string{"result"})

		scoringLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cbt_scoring_latency_seconds",
			Help:    "Latency distribution of assessment scoring.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		})

		optionFallbackTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cbt_option_fallback_fetch_total",
			Help: "Submitted option ids absent from the bulk correctness map and fetched directly.",
		})

		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cbt_admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cbt_admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cbt_admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(
			attemptsTotal,
			scoringLatencySeconds,
			optionFallbackTotal,
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
		)
	})
}

// Attempts exposes the counter for scored attempts, labelled passed/failed.
func Attempts() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsTotal
}

// ScoringLatency exposes the scoring latency histogram.
func ScoringLatency() prometheus.Histogram {
	RegisterMetrics()
	return scoringLatencySeconds
}

// OptionFallbacks exposes the counter for direct option fetches.
func OptionFallbacks() prometheus.Counter {
	RegisterMetrics()
	return optionFallbackTotal
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
