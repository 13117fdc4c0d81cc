// Package metrics exposes prometheus collectors for the quote form service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Outbound rate feed calls by feed name and result.
	RateFeedRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quoteform_rate_feed_requests_total",
			Help: "Total number of rate feed fetches (by feed and result).",
		},
		[]string{"feed", "result"},
	)

	RateFeedDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quoteform_rate_feed_duration_seconds",
			Help:    "Duration of rate feed fetches in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"feed"},
	)

	// Submission attempts; result = "redirected" | "invalid" | "error".
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quoteform_submissions_total",
			Help: "Total number of form submission attempts.",
		},
		[]string{"result"},
	)

	ValidationErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quoteform_validation_errors_total",
			Help: "Validation errors reported on rejected submissions, by field.",
		},
		[]string{"field"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quoteform_sessions_active",
			Help: "Number of live form sessions.",
		},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quoteform_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method", "status"},
	)
)

// ObserveRateFeed records the outcome and latency of a feed call.
func ObserveRateFeed(feed string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	RateFeedRequestsTotal.WithLabelValues(feed, result).Inc()
	RateFeedDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())
}

func IncSubmission(result string) {
	SubmissionsTotal.WithLabelValues(result).Inc()
}

func IncValidationError(field string) {
	ValidationErrorsTotal.WithLabelValues(field).Inc()
}

func SetSessionsActive(n int) {
	SessionsActive.Set(float64(n))
}
