package aggregate

import (
	"context"

	"news-aggregator/internal/domain/entity"
)

// FeedFetcher retrieves the raw body of one feed endpoint.
// Errors wrap ErrFetchTimeout or ErrFetchFailed. Implementations never retry.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FeedParser turns raw feed bytes into items stamped with the source's locale.
// Failures are reported as warnings; Parse never panics on bad input.
type FeedParser interface {
	Parse(raw []byte, src entity.SourceDescriptor) ([]entity.NormalizedItem, []string)
}

// SourceSelector resolves the sources eligible for a country.
type SourceSelector interface {
	Select(ctx context.Context, country, language string) ([]entity.SourceDescriptor, error)
}

// ImageResolver looks up a representative image for an article page.
// An empty string with a nil error means no image was found.
type ImageResolver interface {
	ResolveImage(ctx context.Context, articleURL string) (string, error)
}
