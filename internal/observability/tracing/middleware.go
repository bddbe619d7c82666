package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"news-aggregator/internal/handler/http/pathutil"
	"news-aggregator/internal/handler/http/responsewriter"
)

// TraceIDHeader carries the trace ID back to the client.
const TraceIDHeader = "X-Trace-Id"

// Middleware opens a server span per request, continuing any W3C trace
// context sent by the caller. Span names use the normalized route so that
// probes against unknown paths collapse into "GET other".
//
// Query parameters of /news requests are recorded as span attributes so a
// slow aggregation can be tied back to the filters that produced it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := pathutil.NormalizePath(r.URL.Path)
		ctx, span := tracer.Start(ctx, r.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
			),
		)
		defer span.End()

		if route == "/news" {
			span.SetAttributes(newsQueryAttributes(r)...)
		}

		w.Header().Set(TraceIDHeader, span.SpanContext().TraceID().String())

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		status := rw.StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", status),
			attribute.Int("http.response_size", rw.BytesWritten()),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	})
}

// newsQueryAttributes returns the non-empty /news filters.
func newsQueryAttributes(r *http.Request) []attribute.KeyValue {
	q := r.URL.Query()
	var attrs []attribute.KeyValue
	for _, name := range []string{"q", "country", "language", "period", "date_from", "date_to", "page", "page_size"} {
		if v := q.Get(name); v != "" {
			attrs = append(attrs, attribute.String("news."+name, v))
		}
	}
	return attrs
}
