package config

import (
	"cmp"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Collector schedules use the classic five fields, no seconds.
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateCronSchedule accepts expressions such as "*/30 * * * *".
func ValidateCronSchedule(schedule string) error {
	if schedule == "" {
		return errors.New("cron schedule is empty")
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return fmt.Errorf("cron schedule %q: %w", schedule, err)
	}
	return nil
}

// ValidateTimezone accepts IANA names like "America/Bogota". The host (or the
// binary, via time/tzdata) must ship the zone database.
func ValidateTimezone(name string) error {
	if name == "" {
		return errors.New("timezone is empty")
	}
	if _, err := time.LoadLocation(name); err != nil {
		return fmt.Errorf("timezone %q: %w", name, err)
	}
	return nil
}

// ValidateRange checks lo <= v <= hi for ports, worker counts and timeouts.
func ValidateRange[T cmp.Ordered](v, lo, hi T) error {
	if lo > hi {
		return fmt.Errorf("invalid range [%v, %v]", lo, hi)
	}
	if v < lo || v > hi {
		return fmt.Errorf("%v is outside [%v, %v]", v, lo, hi)
	}
	return nil
}
