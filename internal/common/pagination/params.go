package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

// Params represents pagination query parameters from an HTTP request.
type Params struct {
	Page     int // 1-based page number
	PageSize int // Items per page
}

// ParseQueryParams parses page and page_size from the query string.
//
// Query parameters:
//   - page: optional positive integer, defaults to config.DefaultPage
//   - page_size: required, between 1 and config.MaxLimit
func ParseQueryParams(r *http.Request, config Config) (Params, error) {
	params := Params{Page: config.DefaultPage}
	q := r.URL.Query()

	if pageStr := q.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			recordRejected("page")
			return params, fmt.Errorf("invalid query parameter: page must be a positive integer")
		}
		params.Page = page
	}

	sizeStr := q.Get("page_size")
	if sizeStr == "" {
		recordRejected("page_size")
		return params, fmt.Errorf("invalid query parameter: page_size is required")
	}
	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > config.MaxLimit {
		recordRejected("page_size")
		return params, fmt.Errorf("invalid query parameter: page_size must be between 1 and %d", config.MaxLimit)
	}
	params.PageSize = size

	return params, nil
}
