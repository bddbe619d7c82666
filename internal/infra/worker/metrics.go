package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"news-aggregator/internal/observability/metrics"
	"news-aggregator/internal/pkg/config"
)

const (
	JobStatusSuccess = "success"
	JobStatusFailure = "failure"
)

const subsystem = "collector"

// CollectorMetrics is everything the collector exports on /metrics besides
// the process collectors: its configuration metrics plus one series per
// aspect of a collection run (news_collector_job_*).
type CollectorMetrics struct {
	*config.ConfigMetrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	FeedsProcessedTotal  prometheus.Counter
	ItemsExportedTotal   prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewCollectorMetrics registers on the default registry; call it once.
func NewCollectorMetrics() *CollectorMetrics {
	return &CollectorMetrics{
		ConfigMetrics: config.NewConfigMetrics(subsystem),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: subsystem,
			Name:      "job_runs_total",
			Help:      "Collection runs by outcome.",
		}, []string{"status"}),

		// A run fetches every feed of every source; the crawl timeout caps it at 4h.
		JobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: subsystem,
			Name:      "job_duration_seconds",
			Help:      "Wall time of a collection run.",
			Buckets:   []float64{5, 15, 30, 60, 120, 300, 600, 1800, 3600, 14400},
		}),

		FeedsProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: subsystem,
			Name:      "job_feeds_processed_total",
			Help:      "Feeds fetched by successful runs.",
		}),

		ItemsExportedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: subsystem,
			Name:      "job_items_exported_total",
			Help:      "Items appended to the JSON Lines export.",
		}),

		LastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Subsystem: subsystem,
			Name:      "job_last_success_timestamp_seconds",
			Help:      "When the last successful run finished.",
		}),
	}
}

func (m *CollectorMetrics) RecordJobRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

func (m *CollectorMetrics) RecordJobDuration(seconds float64) {
	m.JobDurationSeconds.Observe(seconds)
}

func (m *CollectorMetrics) RecordFeedsProcessed(count int64) {
	m.FeedsProcessedTotal.Add(float64(count))
}

func (m *CollectorMetrics) RecordItemsExported(count int) {
	m.ItemsExportedTotal.Add(float64(count))
}

func (m *CollectorMetrics) RecordLastSuccess() {
	m.LastSuccessTimestamp.SetToCurrentTime()
}
