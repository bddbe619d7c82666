package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Values of the "result" label of FeedFetchTotal.
const (
	FetchResultSuccess     = "success"
	FetchResultTimeout     = "timeout"
	FetchResultFetchFailed = "fetch_failed"
	FetchResultParseFailed = "parse_failed"
)

// Values of the "result" label of ImageBackfillTotal.
const (
	ImageFound    = "found"
	ImageNotFound = "not_found"
	ImageFailure  = "failure"
)

var (
	SourcesTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "sources_total",
		Help:      "Sources loaded from the registry.",
	})

	FeedFetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "feed_fetch_total",
		Help:      "Feed fetch and parse attempts by outcome.",
	}, []string{"source_id", "result"})

	FeedFetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "feed_fetch_duration_seconds",
		Help:      "Time to fetch and parse one feed.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"source_id"})

	FeedItemsParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "feed_items_parsed_total",
		Help:      "Items produced by the feed parser.",
	}, []string{"source_id"})

	AggregationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "aggregation_duration_seconds",
		Help:      "Wall time of one aggregation call.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 16},
	})

	AggregationMatchedItems = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "aggregation_matched_items",
		Help:      "Items left after filtering, before pagination.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	AggregationWarningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "aggregation_warnings_total",
		Help:      "Warnings attached to aggregation results.",
	})

	FetchCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "fetch_cache_total",
		Help:      "Feed body cache lookups.",
	}, []string{"result"})

	ImageBackfillTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "image_backfill_total",
		Help:      "Article page lookups for a missing image.",
	}, []string{"result"})
)

// RecordFeedFetch records the outcome of fetching and parsing one feed.
func RecordFeedFetch(sourceID, result string, duration time.Duration, items int) {
	FeedFetchTotal.WithLabelValues(sourceID, result).Inc()
	FeedFetchDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
	if items > 0 {
		FeedItemsParsedTotal.WithLabelValues(sourceID).Add(float64(items))
	}
}

// RecordAggregation records one completed aggregation call.
func RecordAggregation(duration time.Duration, matched, warnings int) {
	AggregationDuration.Observe(duration.Seconds())
	AggregationMatchedItems.Observe(float64(matched))
	if warnings > 0 {
		AggregationWarningsTotal.Add(float64(warnings))
	}
}

func RecordFetchCache(hit bool) {
	if hit {
		FetchCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	FetchCacheTotal.WithLabelValues("miss").Inc()
}

// RecordImageBackfill takes ImageFound, ImageNotFound or ImageFailure.
func RecordImageBackfill(result string) {
	ImageBackfillTotal.WithLabelValues(result).Inc()
}

// UpdateSourcesTotal is called once the registry is loaded.
func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}
