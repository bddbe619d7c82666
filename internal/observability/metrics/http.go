package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric the API and the collector export.
const Namespace = "news"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by normalized route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			// /news waits for the slowest feed, so the upper buckets matter.
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
		},
		[]string{"method", "path", "status"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response body size.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		},
		[]string{"method", "path"},
	)

	HTTPRateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_rate_limited_total",
			Help:      "Requests rejected with 429 by the per-client limiter.",
		},
	)
)

// RecordHTTPRequest records one served request. path must already be
// normalized. Requests carry no body on this API, so only the response
// size is observed.
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

func RecordRateLimited() {
	HTTPRateLimitedTotal.Inc()
}
