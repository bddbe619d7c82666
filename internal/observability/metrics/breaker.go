package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BreakerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_transitions_total",
		Help:      "Circuit breaker state changes by breaker kind and new state.",
	}, []string{"kind", "to"})

	BreakerOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "circuit_breakers_open",
		Help:      "Circuit breakers currently open, by breaker kind.",
	}, []string{"kind"})
)

// BreakerKind strips the per-host suffix from a breaker name so that
// "feed-fetch:elpais.com" is reported as "feed-fetch".
func BreakerKind(name string) string {
	kind, _, _ := strings.Cut(name, ":")
	return kind
}

// RecordBreakerTransition counts a state change and keeps BreakerOpen in step.
// States are gobreaker's names: "closed", "half-open" and "open".
func RecordBreakerTransition(name, from, to string) {
	kind := BreakerKind(name)
	BreakerTransitionsTotal.WithLabelValues(kind, to).Inc()
	switch {
	case to == "open":
		BreakerOpen.WithLabelValues(kind).Inc()
	case from == "open":
		BreakerOpen.WithLabelValues(kind).Dec()
	}
}
