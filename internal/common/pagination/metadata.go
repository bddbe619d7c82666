package pagination

// Metadata describes the page returned alongside the total match count.
type Metadata struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total_results"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewMetadata builds metadata for page p of a result set of total items.
func NewMetadata(p Params, total int) Metadata {
	return Metadata{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: CalculateTotalPages(int64(total), p.PageSize),
		HasNext:    CalculateOffset(p.Page, p.PageSize, total)+p.PageSize < total,
	}
}
