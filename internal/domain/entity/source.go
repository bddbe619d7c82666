package entity

import (
	"fmt"
	"strings"
)

// SourceDescriptor represents a configured news source.
// Several descriptors may share a country and language; each one contributes
// its feeds to the fan-out independently.
type SourceDescriptor struct {
	ID       string
	Name     string
	Country  string   // lang-CC code, e.g. "es-AR"
	Language string   // ISO 639-1 code, e.g. "es"
	Feeds    []string // ordered feed endpoint URLs
	Homepage string
}

// Validate validates the SourceDescriptor fields.
// It checks that the identity, locale and at least one well-formed feed URL are present.
func (s *SourceDescriptor) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return &ValidationError{Field: "id", Message: "id is required"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if strings.TrimSpace(s.Country) == "" {
		return &ValidationError{Field: "country", Message: "country is required"}
	}
	if strings.TrimSpace(s.Language) == "" {
		return &ValidationError{Field: "language", Message: "language is required"}
	}
	if len(s.Feeds) == 0 {
		return &ValidationError{Field: "feeds", Message: "at least one feed is required"}
	}
	for i, feed := range s.Feeds {
		if err := ValidateURL(feed); err != nil {
			return fmt.Errorf("feeds[%d]: %w", i, err)
		}
	}
	return nil
}
