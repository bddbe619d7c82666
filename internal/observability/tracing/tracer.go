package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the global tracer instance for the news-aggregator service.
var tracer = otel.Tracer("news-aggregator")

// GetTracer returns the global tracer for creating spans.
// This tracer can be used throughout the application to create new spans.
//
// Example usage:
//
//	ctx, span := tracing.GetTracer().Start(ctx, "operation-name")
//	defer span.End()
func GetTracer() trace.Tracer {
	return tracer
}

// StartFeedSpan starts an internal span covering the fetch and parse of one feed.
// Callers record the outcome with EndFeedSpan.
func StartFeedSpan(ctx context.Context, sourceID, feedURL string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "feed.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("feed.source_id", sourceID),
			attribute.String("feed.url", feedURL),
		),
	)
}

// EndFeedSpan annotates span with the item count and error, then ends it.
func EndFeedSpan(span trace.Span, items int, err error) {
	span.SetAttributes(attribute.Int("feed.items", items))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
