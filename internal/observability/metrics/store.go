package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SnapshotsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "snapshots_saved_total",
		Help:      "Feed snapshots written by the collector.",
	})

	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "db_query_duration_seconds",
		Help:      "Snapshot store query latency.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
	}, []string{"operation"})

	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "db_connections_active",
		Help:      "Snapshot store connections in use.",
	})

	DBConnectionsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "db_connections_idle",
		Help:      "Idle snapshot store connections.",
	})
)

func RecordSnapshotSaved() {
	SnapshotsSavedTotal.Inc()
}

// RecordDBQuery observes one snapshot repository call, e.g. "save_snapshot".
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats copies sql.DBStats pool counts into the gauges.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
