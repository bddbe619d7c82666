// Package pagination parses page parameters and computes page windows and
// metadata for paginated responses.
package pagination

import (
	pkgconfig "news-aggregator/pkg/config"
)

// Config holds pagination limits.
type Config struct {
	DefaultPage int // Page used when the request omits it
	MaxLimit    int // Upper bound for page_size
}

// DefaultConfig returns page=1, max page_size=100.
func DefaultConfig() Config {
	return Config{
		DefaultPage: 1,
		MaxLimit:    100,
	}
}

// LoadFromEnv reads PAGINATION_MAX_LIMIT. Values outside 1..100 fall back
// to the default because the aggregator never serves larger pages.
func LoadFromEnv() Config {
	cfg := DefaultConfig()
	if v := pkgconfig.GetEnvInt("PAGINATION_MAX_LIMIT", cfg.MaxLimit); v >= 1 && v <= cfg.MaxLimit {
		cfg.MaxLimit = v
	}
	return cfg
}
