package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"news-aggregator/internal/domain/entity"
)

func ptrTime(t time.Time) *time.Time { return &t }

func TestPeriod_Days(t *testing.T) {
	assert.Equal(t, 1, entity.PeriodDay.Days())
	assert.Equal(t, 7, entity.PeriodWeek.Days())
	assert.Equal(t, 30, entity.PeriodMonth.Days())
	assert.Equal(t, 365, entity.PeriodYear.Days())
	assert.Equal(t, 0, entity.PeriodNone.Days())
	assert.Equal(t, 0, entity.Period("decade").Days())
}

func TestParsePeriod(t *testing.T) {
	p, err := entity.ParsePeriod(" Week ")
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodWeek, p)

	p, err = entity.ParsePeriod("")
	require.NoError(t, err)
	assert.Equal(t, entity.PeriodNone, p)

	_, err = entity.ParsePeriod("fortnight")
	var ve *entity.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "period", ve.Field)
}

func TestQuery_Validate(t *testing.T) {
	from := ptrTime(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	to := ptrTime(time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC))

	base := entity.Query{Keyword: "economía", Page: 1, PageSize: 10}

	tests := []struct {
		name      string
		mutate    func(q *entity.Query)
		wantField string
	}{
		{name: "valid minimal", mutate: func(*entity.Query) {}},
		{name: "valid with period", mutate: func(q *entity.Query) { q.Period = entity.PeriodMonth }},
		{name: "valid with range", mutate: func(q *entity.Query) { q.From, q.To = from, to }},
		{name: "valid with equal bounds", mutate: func(q *entity.Query) { q.From, q.To = from, from }},
		{name: "valid max page size", mutate: func(q *entity.Query) { q.PageSize = entity.MaxPageSize }},
		{name: "blank keyword", mutate: func(q *entity.Query) { q.Keyword = "   " }, wantField: "q"},
		{name: "page size zero", mutate: func(q *entity.Query) { q.PageSize = 0 }, wantField: "page_size"},
		{name: "page size too large", mutate: func(q *entity.Query) { q.PageSize = 101 }, wantField: "page_size"},
		{name: "page zero", mutate: func(q *entity.Query) { q.Page = 0 }, wantField: "page"},
		{name: "unknown period", mutate: func(q *entity.Query) { q.Period = "decade" }, wantField: "period"},
		{name: "period with from", mutate: func(q *entity.Query) {
			q.Period = entity.PeriodDay
			q.From = from
		}, wantField: "period"},
		{name: "from after to", mutate: func(q *entity.Query) { q.From, q.To = to, from }, wantField: "date_from"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := base
			tt.mutate(&q)

			err := q.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, errors.Is(err, entity.ErrQueryInvalid))
			var ve *entity.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.wantField, ve.Field)
		})
	}
}

func TestQuery_DateRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 13, 45, 0, 0, time.UTC)

	t.Run("no filter", func(t *testing.T) {
		_, ok := entity.Query{}.DateRange(now)
		assert.False(t, ok)
	})

	t.Run("week period spans to end of today", func(t *testing.T) {
		r, ok := entity.Query{Period: entity.PeriodWeek}.DateRange(now)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), r.From)
		assert.Equal(t, time.Date(2024, 6, 15, 23, 59, 59, 999999999, time.UTC), r.To)
	})

	t.Run("period uses UTC calendar day", func(t *testing.T) {
		lima := time.FixedZone("PET", -5*3600)
		local := time.Date(2024, 6, 15, 22, 0, 0, 0, lima) // 2024-06-16 03:00 UTC
		r, ok := entity.Query{Period: entity.PeriodDay}.DateRange(local)
		require.True(t, ok)
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), r.From)
	})

	t.Run("open-ended absolute range", func(t *testing.T) {
		from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		r, ok := entity.Query{From: &from}.DateRange(now)
		require.True(t, ok)
		assert.Equal(t, from, r.From)
		assert.True(t, r.To.IsZero())
		assert.True(t, r.Contains(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
		assert.False(t, r.Contains(from.Add(-time.Second)))
	})
}

func TestDateRange_ContainsIsInclusive(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 6, 30, 23, 59, 59, 0, time.UTC)
	r := entity.DateRange{From: from, To: to}

	assert.True(t, r.Contains(from))
	assert.True(t, r.Contains(to))
	assert.False(t, r.Contains(to.Add(time.Nanosecond)))
	assert.True(t, entity.DateRange{}.Contains(time.Time{}))
}
