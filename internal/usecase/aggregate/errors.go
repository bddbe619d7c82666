// Package aggregate implements the news aggregation engine: concurrent
// fetch and parse across the selected sources, followed by deduplication,
// filtering, ordering and pagination of the merged items.
package aggregate

import (
	"errors"
	"fmt"
)

// Sentinel errors for per-source failures.
// They never fail an aggregation call; Run converts them to warnings.
var (
	// ErrFetchTimeout indicates that a feed did not answer before its deadline.
	ErrFetchTimeout = errors.New("fetch timeout")

	// ErrFetchFailed indicates a transport failure: DNS, connection, non-2xx
	// status, an open circuit breaker or an oversized body.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrParseFailed indicates that a feed document could not be parsed at all.
	ErrParseFailed = errors.New("parse failed")
)

// sourceWarning formats a per-source warning as "<source>: <detail>".
func sourceWarning(source string, err error) string {
	return fmt.Sprintf("%s: %v", source, err)
}

// timeoutWarning is recorded for feeds still running when the call deadline expires.
func timeoutWarning(source, feedURL string) string {
	return fmt.Sprintf("%s: %v: %s", source, ErrFetchTimeout, feedURL)
}
