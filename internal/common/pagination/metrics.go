package pagination

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"news-aggregator/internal/observability/metrics"
)

var (
	pageRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "pagination",
			Name:      "requests_total",
			Help:      "News requests by status and how deep into the results the requested page is.",
		},
		[]string{"status", "depth"},
	)

	rejectedParams = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "pagination",
			Name:      "rejected_params_total",
			Help:      "Pagination parameters rejected during parsing.",
		},
		[]string{"param"},
	)
)

// RecordRequest counts a /news response. Page 0 means the query never parsed.
func RecordRequest(status, page int) {
	pageRequests.WithLabelValues(strconv.Itoa(status), depth(page)).Inc()
}

func recordRejected(param string) {
	rejectedParams.WithLabelValues(param).Inc()
}

func depth(page int) string {
	switch {
	case page < 1:
		return "none"
	case page == 1:
		return "first"
	case page <= 5:
		return "shallow"
	default:
		return "deep"
	}
}
