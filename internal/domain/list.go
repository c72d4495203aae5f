package domain

import "strings"

// Pagination defaults shared by all list endpoints.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams carries the generic list controls shared by every resource:
// free-text search, an ordering key and page-number pagination.
type ListParams struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// Normalize clamps pagination to sane bounds.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
}

// OrderKey resolves the requested ordering against an allow-list.
// A "-" prefix means descending. Unknown keys are ignored and the
// resource default applies.
func (p ListParams) OrderKey(allowed []string, defaultKey string, defaultDesc bool) (key string, desc bool) {
	raw := p.Ordering
	desc = strings.HasPrefix(raw, "-")
	key = strings.TrimPrefix(raw, "-")
	for _, a := range allowed {
		if key == a {
			return key, desc
		}
	}
	return defaultKey, defaultDesc
}

// Page is one bounded window of a list result plus the total match count.
// Next/Previous are page numbers, null at the edges.
type Page[T any] struct {
	Count    int  `json:"count"`
	Next     *int `json:"next"`
	Previous *int `json:"previous"`
	Results  []T  `json:"results"`
}

// NewPage assembles the page envelope for the given window.
func NewPage[T any](results []T, count, page, pageSize int) Page[T] {
	p := Page[T]{Count: count, Results: results}
	if p.Results == nil {
		p.Results = []T{}
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	if page*pageSize < count {
		next := page + 1
		p.Next = &next
	}
	return p
}

// PageWindow returns the [low, high) slice bounds of the requested page
// for an in-memory result set of the given length.
func PageWindow(total, page, pageSize int) (low, high int) {
	low = (page - 1) * pageSize
	if low > total {
		low = total
	}
	high = low + pageSize
	if high > total {
		high = total
	}
	return low, high
}
