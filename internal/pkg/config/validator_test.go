package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"every 30 minutes", "*/30 * * * *", false},
		{"hourly", "0 * * * *", false},
		{"weekdays at 9:30", "30 9 * * 1-5", false},
		{"list", "15,45 */2 * * 1,3,5", false},
		{"empty", "", true},
		{"too few fields", "0 0 *", true},
		{"seconds field", "0 0 0 * * *", true},
		{"minute out of range", "60 * * * *", true},
		{"garbage", "every day", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "Europe/Madrid", "America/Argentina/Buenos_Aires", "America/Bogota"} {
		assert.NoError(t, ValidateTimezone(tz), tz)
	}
	for _, tz := range []string{"", "Mars/Olympus", "+03:00"} {
		assert.Error(t, ValidateTimezone(tz), tz)
	}
}

func TestValidateRange_Durations(t *testing.T) {
	tests := []struct {
		name    string
		d       time.Duration
		lo, hi  time.Duration
		wantErr string
	}{
		{"within", 30 * time.Second, time.Second, time.Minute, ""},
		{"at lo", time.Second, time.Second, time.Minute, ""},
		{"at hi", time.Minute, time.Second, time.Minute, ""},
		{"below", time.Millisecond, time.Second, time.Minute, "1ms is outside [1s, 1m0s]"},
		{"above", time.Hour, time.Second, time.Minute, "outside"},
		{"inverted range", time.Second, time.Minute, time.Second, "invalid range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.d, tt.lo, tt.hi)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateRange_Ints(t *testing.T) {
	assert.NoError(t, ValidateRange(1, 1, 64))
	assert.NoError(t, ValidateRange(8080, 1024, 65535))
	assert.ErrorContains(t, ValidateRange(0, 1, 64), "0 is outside [1, 64]")
	assert.ErrorContains(t, ValidateRange(65, 1, 64), "outside")
	assert.ErrorContains(t, ValidateRange(5, 10, 1), "invalid range")
}
