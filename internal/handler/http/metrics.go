package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"news-aggregator/internal/handler/http/pathutil"
	"news-aggregator/internal/handler/http/responsewriter"
	"news-aggregator/internal/observability/metrics"
)

var httpRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: metrics.Namespace,
	Name:      "http_requests_in_flight",
	Help:      "Requests currently being served.",
})

// MetricsMiddleware feeds the news_http_* series. The path label goes through
// pathutil, so arbitrary URLs collapse into "other" instead of new series.
func MetricsMiddleware(next http.Handler) http.Handler {
	observed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r)

		metrics.RecordHTTPRequest(r.Method, pathutil.NormalizePath(r.URL.Path),
			strconv.Itoa(rw.StatusCode()), time.Since(start), rw.BytesWritten())
	})
	return promhttp.InstrumentHandlerInFlight(httpRequestsInFlight, observed)
}

// MetricsHandler serves the default registry, in OpenMetrics format when the
// scraper asks for it.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
