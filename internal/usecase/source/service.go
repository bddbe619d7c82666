package source

import (
	"context"
	"fmt"
	"strings"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/domain/locale"
	"news-aggregator/internal/repository"
)

// Selector resolves the subset of configured sources for a request.
// It delegates storage of descriptors to the repository.
type Selector struct {
	Repo repository.SourceRepository
}

// List returns every configured source.
func (s *Selector) List(ctx context.Context) ([]entity.SourceDescriptor, error) {
	sources, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Get returns the source with the given ID.
// Returns ErrSourceNotFound if no source matches.
func (s *Selector) Get(ctx context.Context, id string) (entity.SourceDescriptor, error) {
	sources, err := s.List(ctx)
	if err != nil {
		return entity.SourceDescriptor{}, err
	}
	for _, src := range sources {
		if strings.EqualFold(src.ID, id) {
			return src, nil
		}
	}
	return entity.SourceDescriptor{}, ErrSourceNotFound
}

// Select returns the sources eligible for country.
// Without a country every source is returned; language is not applied here
// because the aggregator filters items by their declared language.
// Country aliases are normalized before matching. When nothing matches,
// the result is empty and the error wraps entity.ErrSourceUnresolved.
func (s *Selector) Select(ctx context.Context, country, _ string) ([]entity.SourceDescriptor, error) {
	sources, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(country) == "" {
		return sources, nil
	}

	code, ok := locale.NormalizeCountry(country)
	if !ok {
		return nil, fmt.Errorf("%w: %q", entity.ErrSourceUnresolved, country)
	}

	var out []entity.SourceDescriptor
	for _, src := range sources {
		if strings.EqualFold(src.Country, code) {
			out = append(out, src)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrSourceUnresolved, code)
	}
	return out, nil
}
