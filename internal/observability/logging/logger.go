package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"news-aggregator/internal/handler/http/requestid"
)

// Environment variables read by NewLogger.
const (
	EnvLevel  = "LOG_LEVEL"
	EnvFormat = "LOG_FORMAT"
)

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
// JSON on stdout unless LOG_FORMAT=text.
func NewLogger() *slog.Logger {
	if strings.EqualFold(os.Getenv(EnvFormat), "text") {
		return NewTextLogger()
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, handlerOptions()))
}

// NewTextLogger is the human-readable variant used for local runs.
func NewTextLogger() *slog.Logger {
	return NewTextLoggerTo(os.Stdout)
}

// NewTextLoggerTo writes text records to w. feedcheck passes stderr so that
// its report owns stdout.
func NewTextLoggerTo(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, handlerOptions()))
}

// handlerOptions drops source locations only when the level is error.
func handlerOptions() *slog.HandlerOptions {
	level := ParseLevel(os.Getenv(EnvLevel))
	return &slog.HandlerOptions{
		Level:     level,
		AddSource: level <= slog.LevelWarn,
	}
}

// ParseLevel maps debug, info, warn (or warning) and error to a slog.Level.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID tags logger with the request ID carried by ctx, if any.
func WithRequestID(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return logger.With(slog.String("request_id", id))
	}
	return logger
}

// ForFeed scopes logger to one feed of a source. Fetch, parse and snapshot
// records all carry the same pair of keys so a feed's history can be grepped.
func ForFeed(logger *slog.Logger, sourceID, feedURL string) *slog.Logger {
	return logger.With(
		slog.String("source_id", sourceID),
		slog.String("feed_url", feedURL),
	)
}

type ctxKey struct{}

// WithLogger stores logger in ctx for FromContext.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored by WithLogger, or slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
