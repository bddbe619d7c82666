package news

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
)

const dateOnly = "2006-01-02"

// parseQuery builds an aggregation query from the request.
// Semantic checks (keyword present, period/date exclusivity, from <= to)
// are left to entity.Query.Validate.
func parseQuery(r *http.Request, cfg pagination.Config) (entity.Query, error) {
	v := r.URL.Query()

	pg, err := pagination.ParseQueryParams(r, cfg)
	if err != nil {
		return entity.Query{}, err
	}

	period, err := entity.ParsePeriod(v.Get("period"))
	if err != nil {
		return entity.Query{}, err
	}

	q := entity.Query{
		Keyword:  strings.TrimSpace(v.Get("q")),
		Country:  strings.TrimSpace(v.Get("country")),
		Language: strings.TrimSpace(v.Get("language")),
		Period:   period,
		Page:     pg.Page,
		PageSize: pg.PageSize,
	}

	if s := v.Get("date_from"); s != "" {
		t, err := parseDate("date_from", s, false)
		if err != nil {
			return entity.Query{}, err
		}
		q.From = &t
	}
	if s := v.Get("date_to"); s != "" {
		t, err := parseDate("date_to", s, true)
		if err != nil {
			return entity.Query{}, err
		}
		q.To = &t
	}

	if s := v.Get("debug"); s != "" {
		debug, err := strconv.ParseBool(s)
		if err != nil {
			return entity.Query{}, &entity.ValidationError{Field: "debug", Message: "debug must be true or false"}
		}
		q.Debug = debug
	}

	return q, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare date used as an upper
// bound covers the whole day. Errors name field.
func parseDate(field, s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(dateOnly, s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &entity.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("%s: invalid date %q, expected YYYY-MM-DD or RFC 3339", field, s),
	}
}
