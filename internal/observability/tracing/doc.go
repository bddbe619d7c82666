// Package tracing provides OpenTelemetry tracing integration.
//
// HTTP requests are traced by Middleware, which also returns the trace ID in
// the X-Trace-Id response header. Aggregation calls open one span per feed
// with StartFeedSpan so slow or failing sources can be located in a trace.
//
// The tracer provider is configured by the caller; without one the global
// no-op provider is used.
//
//	ctx, span := tracing.StartFeedSpan(ctx, "elpais", feedURL)
//	items, err := fetchAndParse(ctx, feedURL)
//	tracing.EndFeedSpan(span, len(items), err)
package tracing
