// Package worker provides the runtime pieces of the collector process:
// fail-open configuration, Prometheus job metrics and a health server.
package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"news-aggregator/internal/infra/export"
	"news-aggregator/internal/pkg/config"
)

// CollectorConfig holds the configuration for the collector process.
// This configuration controls the cron schedule, timezone, crawl limits,
// export location and the health server port.
//
// Configuration sources:
//   - Environment variables (loaded via LoadConfigFromEnv)
//   - Default values (provided by DefaultConfig)
//
// Example usage:
//
//	config, _ := LoadConfigFromEnv(logger, metrics)
//	if config.RunOnce {
//	    // run a single collection and exit
//	}
type CollectorConfig struct {
	// CronSchedule is the cron expression for job scheduling.
	// Format: "minute hour day month weekday"
	// Default: "*/30 * * * *" (every 30 minutes)
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC"
	Timezone string

	// Parallelism bounds concurrent feed fetches within one run.
	// Range: 1-64
	// Default: 8
	Parallelism int

	// CrawlTimeout is the maximum duration for a single collection run.
	// Range: 1m-4h
	// Default: 10 minutes
	CrawlTimeout time.Duration

	// HealthPort is the port number for the health check HTTP server.
	// Range: 1024-65535 (avoid privileged ports)
	// Default: 9091
	HealthPort int

	// ExportPath is the JSON Lines file overwritten after each run.
	// Default: "data/rss_news.jl"
	ExportPath string

	// SnapshotRetention prunes snapshots older than this after each run.
	// Zero keeps every snapshot.
	// Default: 7 days
	SnapshotRetention time.Duration

	// RunOnce runs a single collection and exits instead of scheduling.
	// Default: false
	RunOnce bool
}

// DefaultConfig returns a CollectorConfig with default values.
func DefaultConfig() CollectorConfig {
	return CollectorConfig{
		CronSchedule:      "*/30 * * * *",
		Timezone:          "UTC",
		Parallelism:       8,
		CrawlTimeout:      10 * time.Minute,
		HealthPort:        9091,
		ExportPath:        export.DefaultPath,
		SnapshotRetention: 7 * 24 * time.Hour,
		RunOnce:           false,
	}
}

// Validate checks if the configuration values are valid.
// All field errors are collected and returned together.
func (c *CollectorConfig) Validate() error {
	var errs []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateRange(c.Parallelism, 1, 64); err != nil {
		errs = append(errs, fmt.Errorf("parallelism: %w", err))
	}
	if err := config.ValidateRange(c.CrawlTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("crawl timeout: %w", err))
	}
	if err := config.ValidateRange(c.HealthPort, 1024, 65535); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if c.ExportPath == "" {
		errs = append(errs, fmt.Errorf("export path: must not be empty"))
	}
	if c.SnapshotRetention < 0 {
		errs = append(errs, fmt.Errorf("snapshot retention: must not be negative"))
	}

	return errors.Join(errs...)
}

// LoadConfigFromEnv loads collector configuration from environment variables
// with validation and automatic fallback to default values on failure.
// It never returns an error (fail-open strategy).
//
// Environment variables:
//   - COLLECTOR_CRON_SCHEDULE: Cron expression (default: "*/30 * * * *")
//   - COLLECTOR_TIMEZONE: IANA timezone name (default: "UTC")
//   - COLLECTOR_PARALLELISM: Integer 1-64 (default: 8)
//   - COLLECTOR_CRAWL_TIMEOUT: Duration 1m-4h (default: 10m)
//   - COLLECTOR_HEALTH_PORT: Integer 1024-65535 (default: 9091)
//   - COLLECTOR_EXPORT_PATH: File path (default: "data/rss_news.jl")
//   - COLLECTOR_SNAPSHOT_RETENTION: Duration, "0s" disables pruning (default: 168h)
//   - COLLECTOR_RUN_ONCE: Boolean (default: false)
func LoadConfigFromEnv(logger *slog.Logger, metrics *CollectorMetrics) (*CollectorConfig, error) {
	cfg := DefaultConfig()
	var fellBack []string

	apply := func(field, metricField string, result config.ConfigLoadResult) {
		if !result.FallbackApplied {
			return
		}
		fellBack = append(fellBack, metricField)
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", field),
				slog.String("warning", warning))
		}
	}

	result := config.LoadEnvWithFallback("COLLECTOR_CRON_SCHEDULE", cfg.CronSchedule, config.ValidateCronSchedule)
	cfg.CronSchedule = result.Value.(string)
	apply("CronSchedule", "cron_schedule", result)

	result = config.LoadEnvWithFallback("COLLECTOR_TIMEZONE", cfg.Timezone, config.ValidateTimezone)
	cfg.Timezone = result.Value.(string)
	apply("Timezone", "timezone", result)

	result = config.LoadEnvInt("COLLECTOR_PARALLELISM", cfg.Parallelism, func(v int) error {
		return config.ValidateRange(v, 1, 64)
	})
	cfg.Parallelism = result.Value.(int)
	apply("Parallelism", "parallelism", result)

	result = config.LoadEnvDuration("COLLECTOR_CRAWL_TIMEOUT", cfg.CrawlTimeout, func(d time.Duration) error {
		return config.ValidateRange(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.CrawlTimeout = result.Value.(time.Duration)
	apply("CrawlTimeout", "crawl_timeout", result)

	result = config.LoadEnvInt("COLLECTOR_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateRange(v, 1024, 65535)
	})
	cfg.HealthPort = result.Value.(int)
	apply("HealthPort", "health_port", result)

	cfg.ExportPath = config.LoadEnvString("COLLECTOR_EXPORT_PATH", cfg.ExportPath)

	result = config.LoadEnvDuration("COLLECTOR_SNAPSHOT_RETENTION", cfg.SnapshotRetention, func(d time.Duration) error {
		return config.ValidateRange(d, 0, 365*24*time.Hour)
	})
	cfg.SnapshotRetention = result.Value.(time.Duration)
	apply("SnapshotRetention", "snapshot_retention", result)

	result = config.LoadEnvBool("COLLECTOR_RUN_ONCE", cfg.RunOnce)
	cfg.RunOnce = result.Value.(bool)
	apply("RunOnce", "run_once", result)

	metrics.RecordLoad(fellBack)

	return &cfg, nil
}
