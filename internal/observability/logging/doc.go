// Package logging configures the slog loggers used by the API, the collector
// and feedcheck, and carries request-scoped loggers through context.
//
// The HTTP logging middleware stores a logger tagged with the request ID via
// WithLogger; the aggregation pipeline picks it up with FromContext and
// narrows it per feed with ForFeed:
//
//	logger := logging.ForFeed(logging.FromContext(ctx), src.ID, feedURL)
//	logger.Warn("feed fetch failed", slog.Any("error", err))
package logging
