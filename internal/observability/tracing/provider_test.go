package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitProvider(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	shutdown := InitProvider("news-api", "1.2.3", sdktrace.WithSyncer(exporter))
	defer otel.SetTracerProvider(sdktrace.NewTracerProvider())
	tracer = otel.Tracer("news-aggregator")

	_, span := GetTracer().Start(context.Background(), "aggregate.Run")
	assert.True(t, span.SpanContext().TraceID().IsValid())
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	require.NoError(t, shutdown(context.Background()))

	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Resource.Attributes() {
		attrs[kv.Key] = kv.Value.AsString()
	}
	assert.Equal(t, "news-api", attrs["service.name"])
	assert.Equal(t, "1.2.3", attrs["service.version"])

	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}
