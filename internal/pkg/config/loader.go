// Package config loads process settings from environment variables with a
// fail-open policy: a value that does not parse or validate is replaced by
// its default and reported as a warning instead of aborting start-up.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// ConfigLoadResult is the outcome of loading one environment variable.
// Value holds the parsed value or the default when FallbackApplied is set.
//
//	result := LoadEnvDuration("COLLECTOR_CRAWL_TIMEOUT", 10*time.Minute, func(d time.Duration) error {
//	    return ValidateRange(d, time.Minute, 4*time.Hour)
//	})
//	if result.FallbackApplied {
//	    for _, w := range result.Warnings {
//	        logger.Warn(w)
//	    }
//	}
//	timeout := result.Value.(time.Duration)
type ConfigLoadResult struct {
	Value           interface{}
	Warnings        []string
	FallbackApplied bool
}

// LoadEnvString returns the variable's value, or defaultValue when it is
// unset or empty. No validation is applied.
func LoadEnvString(envKey, defaultValue string) string {
	value := os.Getenv(envKey)
	if value == "" {
		return defaultValue
	}
	return value
}

// LoadEnvWithFallback loads a string and runs validator on it.
// An unset variable yields the default without a warning.
func LoadEnvWithFallback(envKey, defaultValue string, validator func(string) error) ConfigLoadResult {
	return load(envKey, defaultValue, func(s string) (string, error) { return s, nil }, validator)
}

// LoadEnvDuration loads a time.ParseDuration value ("30s", "10m", "1h30m").
func LoadEnvDuration(envKey string, defaultValue time.Duration, validator func(time.Duration) error) ConfigLoadResult {
	return load(envKey, defaultValue, time.ParseDuration, validator)
}

// LoadEnvInt loads a base-10 integer.
func LoadEnvInt(envKey string, defaultValue int, validator func(int) error) ConfigLoadResult {
	return load(envKey, defaultValue, func(s string) (int, error) {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid integer format")
		}
		return v, nil
	}, validator)
}

// LoadEnvBool loads a boolean. Accepted spellings are 1, t, T, true, TRUE,
// True and their false counterparts.
func LoadEnvBool(envKey string, defaultValue bool) ConfigLoadResult {
	return load(envKey, defaultValue, func(s string) (bool, error) {
		v, err := strconv.ParseBool(s)
		if err != nil {
			return false, fmt.Errorf("invalid boolean format, expected 'true' or 'false'")
		}
		return v, nil
	}, nil)
}

// load is the shared parse, validate and fall back path.
// Warning format: "Invalid KEY='raw': reason, falling back to default 'def'".
func load[T any](envKey string, defaultValue T, parse func(string) (T, error), validator func(T) error) ConfigLoadResult {
	raw := os.Getenv(envKey)
	if raw == "" {
		return ConfigLoadResult{Value: defaultValue}
	}

	fallback := func(err error) ConfigLoadResult {
		return ConfigLoadResult{
			Value:           defaultValue,
			Warnings:        []string{fmt.Sprintf("Invalid %s='%s': %v, falling back to default '%v'", envKey, raw, err, defaultValue)},
			FallbackApplied: true,
		}
	}

	value, err := parse(raw)
	if err != nil {
		return fallback(err)
	}
	if validator != nil {
		if err := validator(value); err != nil {
			return fallback(err)
		}
	}
	return ConfigLoadResult{Value: value}
}
