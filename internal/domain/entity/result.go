package entity

// AggregationResult is the outcome of one aggregation call.
// TotalMatched counts items after filtering and before pagination.
type AggregationResult struct {
	Items        []NormalizedItem
	Warnings     []string
	TotalMatched int
	Country      string
	Language     string
	Feeds        []string
}

// AddWarning appends a warning to the result.
func (r *AggregationResult) AddWarning(w string) {
	r.Warnings = append(r.Warnings, w)
}
