package fetcher

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "news-aggregator/pkg/config"
)

// ImageLookupConfig controls the optional image backfill. Article pages are
// third-party content, so lookups are bounded in time, size and redirects,
// and private addresses are refused unless DenyPrivateIPs is off (tests only).
type ImageLookupConfig struct {
	Enabled        bool
	Timeout        time.Duration // per page; the aggregation deadline still applies
	MaxBodySize    int64         // enforced while reading, not from Content-Length
	MaxRedirects   int           // Google News article links redirect to the publisher
	DenyPrivateIPs bool
	UserAgent      string
}

const (
	minPageBody = 1 << 10
	maxPageBody = 100 << 20
)

func DefaultConfig() ImageLookupConfig {
	return ImageLookupConfig{
		Timeout:        5 * time.Second,
		MaxBodySize:    2 << 20,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
		UserAgent:      "Mozilla/5.0 (NewsScraper; +https://example.com)",
	}
}

// Validate reports every out-of-range field at once.
func (c *ImageLookupConfig) Validate() error {
	var errs []error
	if err := pkgconfig.ValidatePositiveDuration(c.Timeout); err != nil {
		errs = append(errs, fmt.Errorf("timeout must be positive: %w", err))
	}
	if c.MaxBodySize < minPageBody || c.MaxBodySize > maxPageBody {
		errs = append(errs, fmt.Errorf("max body size must be between %d and %d bytes, got %d", minPageBody, maxPageBody, c.MaxBodySize))
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		errs = append(errs, fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads the IMAGE_BACKFILL_* variables. Values that do not
// parse are logged and replaced by their default, like every other setting;
// values that parse but are out of range make it return an error.
//
//	IMAGE_BACKFILL_ENABLED            bool, default false
//	IMAGE_BACKFILL_TIMEOUT            duration, default 5s
//	IMAGE_BACKFILL_MAX_BODY_SIZE      bytes, default 2 MiB
//	IMAGE_BACKFILL_MAX_REDIRECTS      0-10, default 5
//	IMAGE_BACKFILL_DENY_PRIVATE_IPS   bool, default true
func LoadConfigFromEnv() (ImageLookupConfig, error) {
	cfg := DefaultConfig()
	cfg.Enabled = pkgconfig.GetEnvBool("IMAGE_BACKFILL_ENABLED", cfg.Enabled)
	cfg.Timeout = pkgconfig.GetEnvDuration("IMAGE_BACKFILL_TIMEOUT", cfg.Timeout)
	cfg.MaxBodySize = pkgconfig.GetEnvInt64("IMAGE_BACKFILL_MAX_BODY_SIZE", cfg.MaxBodySize)
	cfg.MaxRedirects = pkgconfig.GetEnvInt("IMAGE_BACKFILL_MAX_REDIRECTS", cfg.MaxRedirects)
	cfg.DenyPrivateIPs = pkgconfig.GetEnvBool("IMAGE_BACKFILL_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("image backfill config: %w", err)
	}
	return cfg, nil
}
