package pagination

// CalculateOffset returns the index of the first item of a 1-based page
// over total items. Pages past the end clamp to total, so the result never
// overflows for very large page numbers.
//   - Page 1, size 20 -> 0
//   - Page 3, size 10 -> 20
func CalculateOffset(page, limit, total int) int {
	if page <= 1 || limit <= 0 {
		return 0
	}
	if page-1 >= CalculateTotalPages(int64(total), limit) {
		return total
	}
	return (page - 1) * limit
}

// CalculateTotalPages returns ceil(total / limit), and at least 1.
func CalculateTotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return int((total-1)/int64(limit) + 1)
}
