// Package ops is the operation layer shared by the CLI and the MCP server.
// Every operation takes an Input struct and returns an Output struct with
// JSON tags.
package ops

// Pagination limits
const (
	DefaultListLimit           = 20
	MaxListLimit               = 100
	DefaultRecommendationLimit = 50
	MaxRecommendationLimit     = 500
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// clampLimit applies the default and maximum to a requested limit.
func clampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}

// paginate returns one page of items. The result is never nil.
func paginate[T any](items []T, limit, offset int) ([]T, Pagination) {
	limit = clampLimit(limit, DefaultListLimit, MaxListLimit)
	offset = max(offset, 0)

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)

	page := make([]T, 0, end-start)
	page = append(page, items[start:end]...)
	return page, Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}
}
