package http

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"news-aggregator/internal/handler/http/requestid"
	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/handler/http/responsewriter"
	"news-aggregator/internal/observability/logging"
)

// Logging puts a request-scoped logger into the context and writes one
// "request completed" record per request. 5xx responses log at error level
// and 4xx at warn, so a LOG_LEVEL=warn deployment still sees failing clients.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLogger := logging.WithRequestID(r.Context(), logger)
			rw := responsewriter.Wrap(w)

			next.ServeHTTP(rw, r.WithContext(logging.WithLogger(r.Context(), reqLogger)))

			elapsed := time.Since(start)
			reqLogger.LogAttrs(r.Context(), levelFor(rw.StatusCode()), "request completed",
				slog.String("trace_id", trace.SpanContextFromContext(r.Context()).TraceID().String()),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("query", r.URL.RawQuery),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.Int("status", rw.StatusCode()),
				slog.Int("bytes", rw.BytesWritten()),
				slog.Duration("duration", elapsed),
				slog.Float64("duration_ms", float64(elapsed.Microseconds())/1000),
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Recover turns a handler panic into a 500 with the generic error body. The
// panic value and stack go to the log only.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				respond.SafeError(w, http.StatusInternalServerError, errors.New("internal error"))
				logger.LogAttrs(r.Context(), slog.LevelError, "panic recovered",
					slog.String("request_id", requestid.FromContext(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LimitRequestBody caps request bodies at maxBytes. The API only serves GET,
// so anything large is either a mistake or abuse.
func LimitRequestBody(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
