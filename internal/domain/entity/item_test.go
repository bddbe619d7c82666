package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"news-aggregator/internal/domain/entity"
)

func TestNormalizedItem_DedupKey(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{name: "trailing slash ignored", a: "https://x.com/a/", b: "https://x.com/a", same: true},
		{name: "case ignored", a: "HTTPS://X.COM/A", b: "https://x.com/a", same: true},
		{name: "surrounding whitespace ignored", a: "  https://x.com/a ", b: "https://x.com/a", same: true},
		{name: "multiple trailing slashes", a: "https://x.com/a//", b: "https://x.com/a", same: true},
		{name: "different paths", a: "https://x.com/a", b: "https://x.com/b", same: false},
		{name: "query string is significant", a: "https://x.com/a?id=1", b: "https://x.com/a?id=2", same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka := entity.NormalizedItem{Link: tt.a}.DedupKey()
			kb := entity.NormalizedItem{Link: tt.b}.DedupKey()
			assert.Equal(t, tt.same, ka == kb, "%q vs %q", ka, kb)
		})
	}
}

func TestNormalizedItem_HasDate(t *testing.T) {
	now := time.Now()
	var zero time.Time

	assert.True(t, entity.NormalizedItem{PublishedAt: &now}.HasDate())
	assert.False(t, entity.NormalizedItem{}.HasDate())
	assert.False(t, entity.NormalizedItem{PublishedAt: &zero}.HasDate())
}

func TestAggregationResult_AddWarning(t *testing.T) {
	var r entity.AggregationResult
	r.AddWarning("El País: fetch failed")
	r.AddWarning("Clarín: timeout")

	assert.Equal(t, []string{"El País: fetch failed", "Clarín: timeout"}, r.Warnings)
}
