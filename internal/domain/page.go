package domain

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// PaginationParams is a 1-indexed page request for company and alert listings.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams applies defaults to optional page and limit query
// values. Values below 1 are ignored and the limit is capped at MaxPageLimit.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageLimit}
	if page != nil && *page >= 1 {
		p.Page = *page
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageLimit)
	}
	return p
}

// Offset is the number of rows to skip before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
