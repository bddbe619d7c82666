package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
	"news-aggregator/internal/handler/http/respond"
	"news-aggregator/internal/observability/logging"
)

// Aggregator runs one aggregation call.
type Aggregator interface {
	Run(ctx context.Context, q entity.Query) (*entity.AggregationResult, error)
}

// Handler serves GET /news.
type Handler struct {
	Svc           Aggregator
	PaginationCfg pagination.Config
}

// ServeHTTP ニュース集約
// @Summary      ニュース検索
// @Description  国・言語・期間で絞り込んだRSS/Atomニュースをキーワード検索します。
// @Description  個別ソースの失敗はwarningsに記録され、リクエスト自体は成功します。
// @Tags         news
// @Produce      json
// @Param        q          query  string  true   "検索キーワード（タイトルに部分一致、大文字小文字を区別しない）"
// @Param        country    query  string  false  "国コードまたは別名（例: es, spain, españa）"
// @Param        language   query  string  false  "言語コード（例: es, en）"
// @Param        period     query  string  false  "相対期間"  Enums(day, week, month, year)
// @Param        date_from  query  string  false  "開始日（YYYY-MM-DD または RFC 3339）"
// @Param        date_to    query  string  false  "終了日（YYYY-MM-DD は当日末まで含む）"
// @Param        page       query  int     false  "ページ番号（1以上）"  default(1)
// @Param        page_size  query  int     true   "1ページの件数（1〜100）"
// @Param        debug      query  bool    false  "取得したフィード一覧をwarningsに追加"
// @Success      200  {object}  Response
// @Failure      400  {object}  respond.ErrorBody  "Invalid query"
// @Failure      429  {object}  respond.ErrorBody  "Too many requests"  headers(Retry-After=integer)
// @Failure      500  {object}  respond.ErrorBody  "Server error"
// @Router       /news [get]
func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	q, err := parseQuery(r, h.PaginationCfg)
	if err != nil {
		pagination.RecordRequest(http.StatusBadRequest, 0)
		respond.Error(w, http.StatusBadRequest, err)
		return
	}

	result, err := h.Svc.Run(r.Context(), q)
	if err != nil {
		if errors.Is(err, entity.ErrQueryInvalid) {
			pagination.RecordRequest(http.StatusBadRequest, q.Page)
			respond.Error(w, http.StatusBadRequest, clientError(err))
			return
		}
		pagination.RecordRequest(http.StatusInternalServerError, q.Page)
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	items := make([]ItemDTO, 0, len(result.Items))
	for _, it := range result.Items {
		items = append(items, toItemDTO(it))
	}
	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	resp := Response{
		Country:      result.Country,
		Language:     optional(result.Language),
		Page:         q.Page,
		PageSize:     q.PageSize,
		TotalResults: result.TotalMatched,
		Period:       optional(string(q.Period)),
		DateFrom:     optional(r.URL.Query().Get("date_from")),
		DateTo:       optional(r.URL.Query().Get("date_to")),
		Items:        items,
		Warnings:     warnings,
	}

	meta := pagination.NewMetadata(pagination.Params{Page: q.Page, PageSize: q.PageSize}, result.TotalMatched)
	w.Header().Set("X-Total-Count", strconv.Itoa(meta.Total))
	w.Header().Set("X-Total-Pages", strconv.Itoa(meta.TotalPages))

	logger.Debug("news request served",
		slog.String("country", result.Country),
		slog.Int("total_results", result.TotalMatched),
		slog.Int("items", len(items)),
		slog.Int("warnings", len(warnings)),
	)

	pagination.RecordRequest(http.StatusOK, q.Page)
	respond.JSON(w, http.StatusOK, resp)
}

// clientError strips the sentinel prefix so the client sees the field message.
func clientError(err error) error {
	var ve *entity.ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return err
}
