// Package config assembles the API process configuration from environment
// variables. Unparseable values fall back to defaults with a warning; values
// that parse but are out of range are reported by Validate.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"news-aggregator/internal/infra/db"
	pkgconfig "news-aggregator/pkg/config"
)

// Fetch modes.
const (
	FetchModeHTTP     = "http"
	FetchModeSnapshot = "snapshot"
)

// Config holds the API server configuration.
type Config struct {
	HTTPAddr        string
	Version         string
	SourcesFile     string // empty means the embedded registry
	ShutdownTimeout time.Duration

	FetchMode string
	Fetch     FetchConfig
	Aggregate AggregateConfig
	Store     StoreConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig

	TracingEnabled bool
}

// FetchConfig configures the feed fetcher chain.
type FetchConfig struct {
	Timeout        time.Duration
	UserAgent      string
	MaxBodySize    int64
	HostRPS        float64 // 0 disables per-host limiting
	HostBurst      int
	BreakerEnabled bool
	CacheTTL       time.Duration // 0 disables the raw feed cache
}

// AggregateConfig configures the aggregation engine.
type AggregateConfig struct {
	CallTimeout       time.Duration
	GoogleNewsEnabled bool
}

// StoreConfig selects the snapshot store used by FETCH_MODE=snapshot.
type StoreConfig struct {
	Driver         string
	DSN            string
	SnapshotMaxAge time.Duration // 0 accepts snapshots of any age
}

// RateLimitConfig configures the per-IP sliding window limiter.
type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// CORSConfig configures rs/cors.
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		HTTPAddr:        pkgconfig.GetEnvString("HTTP_ADDR", ":8080"),
		Version:         pkgconfig.GetEnvString("VERSION", "dev"),
		SourcesFile:     pkgconfig.GetEnvString("SOURCES_FILE", ""),
		ShutdownTimeout: pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		FetchMode: strings.ToLower(pkgconfig.GetEnvString("FETCH_MODE", FetchModeHTTP)),
		Fetch: FetchConfig{
			Timeout:        pkgconfig.GetEnvDuration("FETCH_TIMEOUT", 10*time.Second),
			UserAgent:      pkgconfig.GetEnvString("FETCH_USER_AGENT", "Mozilla/5.0 (NewsScraper; +https://example.com)"),
			MaxBodySize:    pkgconfig.GetEnvInt64("FETCH_MAX_BODY_SIZE", 10<<20),
			HostRPS:        pkgconfig.GetEnvFloat("FETCH_HOST_RPS", 0),
			HostBurst:      pkgconfig.GetEnvInt("FETCH_HOST_BURST", 2),
			BreakerEnabled: pkgconfig.GetEnvBool("FETCH_BREAKER_ENABLED", true),
			CacheTTL:       pkgconfig.GetEnvDuration("FETCH_CACHE_TTL", 0),
		},
		Aggregate: AggregateConfig{
			CallTimeout:       pkgconfig.GetEnvDuration("AGGREGATE_CALL_TIMEOUT", 15*time.Second),
			GoogleNewsEnabled: pkgconfig.GetEnvBool("GOOGLE_NEWS_ENABLED", true),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(pkgconfig.GetEnvString("STORE_DRIVER", db.DriverSQLite)),
			DSN:            pkgconfig.GetEnvString("STORE_DSN", "data/snapshots.db"),
			SnapshotMaxAge: pkgconfig.GetEnvDuration("SNAPSHOT_MAX_AGE", 0),
		},
		RateLimit: RateLimitConfig{
			Enabled:  pkgconfig.GetEnvBool("RATELIMIT_ENABLED", true),
			Requests: pkgconfig.GetEnvInt("RATELIMIT_REQUESTS", 60),
			Window:   pkgconfig.GetEnvDuration("RATELIMIT_WINDOW", time.Minute),
		},
		CORS: CORSConfig{
			AllowedOrigins: pkgconfig.GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxAge:         pkgconfig.GetEnvInt("CORS_MAX_AGE", 300),
		},
		TracingEnabled: pkgconfig.GetEnvBool("TRACING_ENABLED", false),
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(field string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", field, err))
		}
	}

	if c.HTTPAddr == "" {
		errs = append(errs, errors.New("HTTP_ADDR: must not be empty"))
	}
	switch c.FetchMode {
	case FetchModeHTTP, FetchModeSnapshot:
	default:
		errs = append(errs, fmt.Errorf("FETCH_MODE: must be %q or %q, got %q", FetchModeHTTP, FetchModeSnapshot, c.FetchMode))
	}
	check("FETCH_TIMEOUT", pkgconfig.ValidatePositiveDuration(c.Fetch.Timeout))
	if c.Fetch.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("FETCH_MAX_BODY_SIZE: must be positive, got %d", c.Fetch.MaxBodySize))
	}
	if c.Fetch.HostRPS < 0 {
		errs = append(errs, fmt.Errorf("FETCH_HOST_RPS: must not be negative, got %v", c.Fetch.HostRPS))
	}
	check("FETCH_CACHE_TTL", pkgconfig.ValidateNonNegativeDuration(c.Fetch.CacheTTL))
	check("AGGREGATE_CALL_TIMEOUT", pkgconfig.ValidateDurationRange(c.Aggregate.CallTimeout, time.Second, 2*time.Minute))
	check("SHUTDOWN_TIMEOUT", pkgconfig.ValidatePositiveDuration(c.ShutdownTimeout))
	check("SNAPSHOT_MAX_AGE", pkgconfig.ValidateNonNegativeDuration(c.Store.SnapshotMaxAge))

	if c.FetchMode == FetchModeSnapshot {
		switch c.Store.Driver {
		case db.DriverSQLite, db.DriverPostgres:
		default:
			errs = append(errs, fmt.Errorf("STORE_DRIVER: unsupported driver %q", c.Store.Driver))
		}
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("STORE_DSN: required in snapshot mode"))
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Requests < 1 {
			errs = append(errs, fmt.Errorf("RATELIMIT_REQUESTS: must be at least 1, got %d", c.RateLimit.Requests))
		}
		check("RATELIMIT_WINDOW", pkgconfig.ValidatePositiveDuration(c.RateLimit.Window))
	}

	return errors.Join(errs...)
}
