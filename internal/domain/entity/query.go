package entity

import (
	"fmt"
	"strings"
	"time"
)

// MaxPageSize is the upper bound for Query.PageSize.
const MaxPageSize = 100

// Period is a relative date window ending today.
type Period string

// Supported relative periods.
const (
	PeriodNone  Period = ""
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Days returns the length of the period in days, or 0 for PeriodNone and unknown values.
func (p Period) Days() int {
	switch p {
	case PeriodDay:
		return 1
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 365
	default:
		return 0
	}
}

// ParsePeriod parses a period name case-insensitively.
func ParsePeriod(s string) (Period, error) {
	p := Period(strings.ToLower(strings.TrimSpace(s)))
	if p == PeriodNone || p.Days() > 0 {
		return p, nil
	}
	return PeriodNone, &ValidationError{Field: "period", Message: "period must be one of: day, week, month, year"}
}

// Query is the caller intent for one aggregation call.
// Period and From/To are mutually exclusive. From and To are inclusive bounds.
type Query struct {
	Keyword  string
	Country  string
	Language string
	Period   Period
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
	Debug    bool
}

// Validate checks the query before any source is contacted.
// Every failure wraps ErrQueryInvalid and a *ValidationError naming the field.
func (q Query) Validate() error {
	invalid := func(field, msg string) error {
		return fmt.Errorf("%w: %w", ErrQueryInvalid, &ValidationError{Field: field, Message: msg})
	}

	if strings.TrimSpace(q.Keyword) == "" {
		return invalid("q", "keyword is required")
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		return invalid("page_size", fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize))
	}
	if q.Page < 1 {
		return invalid("page", "page must be a positive integer")
	}
	if q.Period != PeriodNone && q.Period.Days() == 0 {
		return invalid("period", "period must be one of: day, week, month, year")
	}
	if q.Period != PeriodNone && (q.From != nil || q.To != nil) {
		return invalid("period", "period cannot be combined with date_from or date_to")
	}
	if q.From != nil && q.To != nil && q.From.After(*q.To) {
		return invalid("date_from", "date_from must be before or equal to date_to")
	}
	return nil
}

// DateRange is an inclusive time window. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies within the window.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// DateRange returns the effective date window of the query relative to now.
// The boolean is false when no date filter is active.
// A relative period spans from the start of the day N days ago to the end of today (UTC).
func (q Query) DateRange(now time.Time) (DateRange, bool) {
	if days := q.Period.Days(); days > 0 {
		today := now.UTC().Truncate(24 * time.Hour)
		return DateRange{
			From: today.AddDate(0, 0, -days),
			To:   today.Add(24*time.Hour - time.Nanosecond),
		}, true
	}

	if q.From == nil && q.To == nil {
		return DateRange{}, false
	}

	var r DateRange
	if q.From != nil {
		r.From = *q.From
	}
	if q.To != nil {
		r.To = *q.To
	}
	return r, true
}
