// Package observability is the parent of the logging, metrics and tracing
// packages used by cmd/api, cmd/collector and cmd/feedcheck.
//
// logging configures slog and carries request and feed scoped loggers,
// metrics defines the news_* Prometheus collectors, and tracing wires
// OpenTelemetry spans for HTTP requests and individual feed fetches.
package observability
