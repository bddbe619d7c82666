// Package metrics holds the Prometheus collectors shared by the API and the
// collector. All of them live under the "news" namespace and register with
// the default registry, so promhttp.Handler exposes them without wiring.
//
// Per-source series are keyed by registry source ID, which bounds their
// cardinality to the size of sources.yaml.
//
//	start := time.Now()
//	items, err := fetchAndParse(ctx, feedURL)
//	metrics.RecordFeedFetch(src.ID, metrics.FetchResultSuccess, time.Since(start), len(items))
package metrics
