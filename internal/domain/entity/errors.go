package entity

import "errors"

var (
	// ErrNotFound is returned by repositories for a missing snapshot.
	ErrNotFound = errors.New("entity not found")

	// ErrQueryInvalid marks a query rejected before any feed is fetched.
	// It is the only error an aggregation call returns to its caller.
	ErrQueryInvalid = errors.New("invalid query")

	// ErrSourceUnresolved means a country matched no configured source.
	// It surfaces as a warning, never as a call failure.
	ErrSourceUnresolved = errors.New("no sources configured for country")
)

// ValidationError names the query parameter or registry field that was
// rejected. Message is shown to API clients as is, so it names the field
// itself ("page_size must be between 1 and 100").
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return "invalid " + e.Field
	}
	return e.Message
}
