package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "algoscope_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "algoscope_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	traceStepsGenerated = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "algoscope_trace_steps",
			Help:    "Number of states in generated traces",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
		[]string{"variant"},
	)

	rateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "algoscope_http_rate_limited_total",
			Help: "Write requests rejected by the rate limiter",
		},
	)
)
