// Package registry loads the static source registry from YAML.
// The registry is read once at startup into an immutable descriptor set.
package registry

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/domain/locale"
	"news-aggregator/internal/observability/metrics"
)

//go:embed sources.yaml
var defaultSources []byte

type fileFormat struct {
	Sources []sourceRecord `yaml:"sources"`
}

type sourceRecord struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Country  string   `yaml:"country"`
	Language string   `yaml:"language"`
	Homepage string   `yaml:"homepage"`
	Feeds    []string `yaml:"feeds"`
}

// Registry implements repository.SourceRepository over an immutable descriptor set.
type Registry struct {
	sources []entity.SourceDescriptor
}

// Load reads the registry at path, or the embedded default when path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(bytes.NewReader(defaultSources))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source registry: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a registry document.
// Countries are canonicalized through the locale alias table; IDs must be unique.
func Parse(in io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(in)
	dec.KnownFields(true)

	var doc fileFormat
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("source registry is empty")
		}
		return nil, fmt.Errorf("decode source registry: %w", err)
	}

	seen := make(map[string]struct{}, len(doc.Sources))
	sources := make([]entity.SourceDescriptor, 0, len(doc.Sources))
	var errs []error
	for i, rec := range doc.Sources {
		d := entity.SourceDescriptor{
			ID:       strings.TrimSpace(rec.ID),
			Name:     strings.TrimSpace(rec.Name),
			Language: locale.NormalizeLanguage(rec.Language),
			Feeds:    rec.Feeds,
			Homepage: strings.TrimSpace(rec.Homepage),
		}
		if code, ok := locale.NormalizeCountry(rec.Country); ok {
			d.Country = code
		}

		if err := d.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("sources[%d] (%s): %w", i, d.ID, err))
			continue
		}
		if _, dup := seen[d.ID]; dup {
			errs = append(errs, fmt.Errorf("sources[%d]: duplicate id %q", i, d.ID))
			continue
		}
		seen[d.ID] = struct{}{}
		sources = append(sources, d)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	metrics.UpdateSourcesTotal(len(sources))
	slog.Info("source registry loaded", slog.Int("sources", len(sources)))

	return &Registry{sources: sources}, nil
}

// New builds a registry from descriptors already held in memory.
// Locales are canonicalized as in Parse, but feed URLs are not validated,
// so sources may point at local or loopback endpoints.
func New(sources []entity.SourceDescriptor) *Registry {
	out := make([]entity.SourceDescriptor, len(sources))
	for i, d := range sources {
		d.Feeds = append([]string(nil), d.Feeds...)
		d.Language = locale.NormalizeLanguage(d.Language)
		if code, ok := locale.NormalizeCountry(d.Country); ok {
			d.Country = code
		}
		out[i] = d
	}
	return &Registry{sources: out}
}

// List returns a copy of every descriptor in registry order.
func (r *Registry) List(_ context.Context) ([]entity.SourceDescriptor, error) {
	out := make([]entity.SourceDescriptor, len(r.sources))
	for i, s := range r.sources {
		s.Feeds = append([]string(nil), s.Feeds...)
		out[i] = s
	}
	return out, nil
}

// Len returns the number of descriptors.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Countries returns the distinct countries in registry order.
func (r *Registry) Countries() []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, s := range r.sources {
		if _, ok := seen[s.Country]; ok {
			continue
		}
		seen[s.Country] = struct{}{}
		out = append(out, s.Country)
	}
	return out
}
