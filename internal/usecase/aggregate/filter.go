package aggregate

import (
	"sort"
	"strings"

	"news-aggregator/internal/common/pagination"
	"news-aggregator/internal/domain/entity"
)

// dedup keeps the first item for each link key, preserving order.
func dedup(items []entity.NormalizedItem) []entity.NormalizedItem {
	seen := make(map[string]struct{}, len(items))
	out := items[:0:0]
	for _, it := range items {
		key := it.DedupKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// filterKeyword keeps items whose title contains keyword, ignoring case.
// Accents are significant: "economia" does not match "Economía".
func filterKeyword(items []entity.NormalizedItem, keyword string) []entity.NormalizedItem {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if strings.Contains(strings.ToLower(it.Title), needle) {
			out = append(out, it)
		}
	}
	return out
}

// filterLanguage keeps items declared in lang. An empty lang keeps everything.
func filterLanguage(items []entity.NormalizedItem, lang string) []entity.NormalizedItem {
	if lang == "" {
		return items
	}
	out := items[:0:0]
	for _, it := range items {
		if strings.EqualFold(it.Language, lang) {
			out = append(out, it)
		}
	}
	return out
}

// filterDate keeps dated items inside r. Undated items are dropped.
func filterDate(items []entity.NormalizedItem, r entity.DateRange) []entity.NormalizedItem {
	out := items[:0:0]
	for _, it := range items {
		if it.HasDate() && r.Contains(*it.PublishedAt) {
			out = append(out, it)
		}
	}
	return out
}

// sortByDate orders items newest first. Undated items go last, in their existing order.
func sortByDate(items []entity.NormalizedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		switch {
		case a.HasDate() && b.HasDate():
			return a.PublishedAt.After(*b.PublishedAt)
		case a.HasDate():
			return true
		default:
			return false
		}
	})
}

// paginate returns the window [(page-1)*size, page*size) of items.
// A page past the end yields an empty, non-nil slice.
func paginate(items []entity.NormalizedItem, page, size int) []entity.NormalizedItem {
	start := pagination.CalculateOffset(page, size, len(items))
	if start >= len(items) {
		return []entity.NormalizedItem{}
	}
	end := len(items)
	if size < end-start {
		end = start + size
	}
	return items[start:end]
}
