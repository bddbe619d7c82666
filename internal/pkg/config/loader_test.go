package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadEnvString(t *testing.T) {
	t.Setenv("TEST_SOURCES_FILE", "")
	assert.Equal(t, "default.yaml", LoadEnvString("TEST_SOURCES_FILE", "default.yaml"))

	t.Setenv("TEST_SOURCES_FILE", "/etc/news/sources.yaml")
	assert.Equal(t, "/etc/news/sources.yaml", LoadEnvString("TEST_SOURCES_FILE", "default.yaml"))
}

func TestLoadEnvWithFallback(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		want         string
		wantFallback bool
	}{
		{"unset uses default silently", "", "*/30 * * * *", false},
		{"valid value", "0 6 * * *", "0 6 * * *", false},
		{"invalid value falls back", "every day", "*/30 * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_CRON", tt.value)

			result := LoadEnvWithFallback("TEST_CRON", "*/30 * * * *", ValidateCronSchedule)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantFallback {
				assert.Len(t, result.Warnings, 1)
				assert.Contains(t, result.Warnings[0], "Invalid TEST_CRON='every day'")
				assert.Contains(t, result.Warnings[0], "falling back to default '*/30 * * * *'")
			} else {
				assert.Empty(t, result.Warnings)
			}
		})
	}
}

func TestLoadEnvWithFallback_NilValidator(t *testing.T) {
	t.Setenv("TEST_ANY", "anything goes")

	result := LoadEnvWithFallback("TEST_ANY", "default", nil)

	assert.Equal(t, "anything goes", result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration(t *testing.T) {
	validator := func(d time.Duration) error { return ValidateRange(d, time.Second, time.Minute) }

	tests := []struct {
		name         string
		value        string
		want         time.Duration
		wantFallback bool
	}{
		{"unset", "", 10 * time.Second, false},
		{"valid", "30s", 30 * time.Second, false},
		{"compound", "1m", time.Minute, false},
		{"unparseable", "ten seconds", 10 * time.Second, true},
		{"out of range", "2h", 10 * time.Second, true},
		{"negative", "-5s", 10 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_FETCH_TIMEOUT", tt.value)

			result := LoadEnvDuration("TEST_FETCH_TIMEOUT", 10*time.Second, validator)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
		})
	}
}

func TestLoadEnvInt(t *testing.T) {
	validator := func(v int) error { return ValidateRange(v, 1, 100) }

	tests := []struct {
		name         string
		value        string
		want         int
		wantFallback bool
		wantWarning  string
	}{
		{"unset", "", 50, false, ""},
		{"valid", "20", 20, false, ""},
		{"boundary", "100", 100, false, ""},
		{"not a number", "twenty", 50, true, "invalid integer format"},
		{"float", "2.5", 50, true, "invalid integer format"},
		{"out of range", "101", 50, true, "101 is outside [1, 100]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_LIMIT", tt.value)

			result := LoadEnvInt("TEST_LIMIT", 50, validator)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantWarning != "" {
				assert.Contains(t, result.Warnings[0], tt.wantWarning)
			}
		})
	}
}

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		value        string
		want         bool
		wantFallback bool
	}{
		{"", true, false},
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"false", false, false},
		{"F", false, false},
		{"0", false, false},
		{"yes", true, true},
		{"off", true, true},
	}

	for _, tt := range tests {
		t.Run("value="+tt.value, func(t *testing.T) {
			t.Setenv("TEST_GOOGLE_NEWS", tt.value)

			result := LoadEnvBool("TEST_GOOGLE_NEWS", true)

			assert.Equal(t, tt.want, result.Value)
			assert.Equal(t, tt.wantFallback, result.FallbackApplied)
			if tt.wantFallback {
				assert.Contains(t, result.Warnings[0], "invalid boolean format")
			}
		})
	}
}
