package entity

import "time"

// Snapshot is the raw body of one feed endpoint as harvested by the collector.
// The body is stored verbatim so the same parser serves live and offline modes.
type Snapshot struct {
	FeedURL     string
	SourceID    string
	Body        []byte
	ContentType string
	FetchedAt   time.Time
}
