package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDepth(t *testing.T) {
	tests := map[int]string{0: "none", 1: "first", 2: "shallow", 5: "shallow", 6: "deep", 400: "deep"}
	for page, want := range tests {
		assert.Equal(t, want, depth(page), "page %d", page)
	}
}

func TestRecordRequest(t *testing.T) {
	c := pageRequests.WithLabelValues("200", "shallow")
	before := testutil.ToFloat64(c)

	RecordRequest(200, 3)

	assert.Equal(t, before+1, testutil.ToFloat64(c))
}

func TestParseQueryParams_CountsRejectedParam(t *testing.T) {
	pageC := rejectedParams.WithLabelValues("page")
	sizeC := rejectedParams.WithLabelValues("page_size")
	pageBefore, sizeBefore := testutil.ToFloat64(pageC), testutil.ToFloat64(sizeC)

	_, err := ParseQueryParams(httptest.NewRequest("GET", "/news?page=-1&page_size=10", nil), DefaultConfig())
	assert.Error(t, err)
	_, err = ParseQueryParams(httptest.NewRequest("GET", "/news?page_size=1000", nil), DefaultConfig())
	assert.Error(t, err)

	assert.Equal(t, pageBefore+1, testutil.ToFloat64(pageC))
	assert.Equal(t, sizeBefore+1, testutil.ToFloat64(sizeC))
}
