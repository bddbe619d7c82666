// Package config provides warn-and-default environment variable helpers.
// A value that does not parse is logged at warn level and the default is used.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetEnvString returns the variable's value, or defaultValue when unset or empty.
//
//	addr := GetEnvString("HTTP_ADDR", ":8080")
func GetEnvString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt parses the variable as a base-10 int.
//
//	limit := GetEnvInt("PAGINATION_MAX_LIMIT", 100)
func GetEnvInt(key string, defaultValue int) int {
	return getEnv(key, defaultValue, strconv.Atoi)
}

// GetEnvInt64 parses the variable as a base-10 int64, e.g. byte sizes.
func GetEnvInt64(key string, defaultValue int64) int64 {
	return getEnv(key, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// GetEnvFloat parses the variable as a float64.
//
//	rps := GetEnvFloat("FETCH_HOST_RPS", 0)
func GetEnvFloat(key string, defaultValue float64) float64 {
	return getEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// GetEnvBool accepts 1, t, T, true, TRUE, True and the false counterparts.
//
//	enabled := GetEnvBool("GOOGLE_NEWS_ENABLED", true)
func GetEnvBool(key string, defaultValue bool) bool {
	return getEnv(key, defaultValue, strconv.ParseBool)
}

// GetEnvDuration parses the variable with time.ParseDuration.
//
//	timeout := GetEnvDuration("FETCH_TIMEOUT", 10*time.Second)
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return getEnv(key, defaultValue, time.ParseDuration)
}

// GetEnvStringList splits a comma-separated variable and trims each entry.
// Empty entries are dropped; an all-empty list yields defaultValue.
//
//	origins := GetEnvStringList("CORS_ALLOWED_ORIGINS", []string{"*"})
func GetEnvStringList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

func getEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := parse(strings.TrimSpace(valueStr))
	if err != nil {
		slog.Warn("invalid value for environment variable, using default",
			slog.String("key", key),
			slog.String("value", valueStr),
			slog.Any("default", defaultValue),
			slog.String("error", err.Error()))
		return defaultValue
	}
	return value
}
