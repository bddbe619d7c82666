// Package entity defines the core domain entities and validation logic for the application.
// It contains the fundamental business objects such as NormalizedItem, SourceDescriptor
// and Query, along with their validation rules and domain-specific errors.
package entity

import (
	"strings"
	"time"
)

// UntitledPlaceholder is the title given to entries that carry a link but no title.
const UntitledPlaceholder = "(sin título)"

// NormalizedItem represents one news item, independent of the feed dialect it came from.
// Country and Language are stamped from the producing source, never from content.
type NormalizedItem struct {
	Title       string
	Link        string
	ImagePath   string
	Source      string
	PublishedAt *time.Time
	Country     string
	Language    string
}

// HasDate reports whether the item carries a publication timestamp.
func (i NormalizedItem) HasDate() bool {
	return i.PublishedAt != nil && !i.PublishedAt.IsZero()
}

// DedupKey returns the key used to detect duplicate items.
// Links are compared case-insensitively and without trailing slashes.
func (i NormalizedItem) DedupKey() string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(i.Link)), "/")
}
