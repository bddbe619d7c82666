package news

import (
	"net/http"

	"news-aggregator/internal/common/pagination"
)

// Register mounts GET /news on mux.
func Register(mux *http.ServeMux, svc Aggregator, paginationCfg pagination.Config) {
	mux.Handle("GET /news", Handler{
		Svc:           svc,
		PaginationCfg: paginationCfg,
	})
}
