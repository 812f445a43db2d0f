// Package pagination provides page-based pagination parameters and the
// derived projection (total pages, next/previous availability) shared by the
// clinic client and the sandbox server.
package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds the page-based pagination parameters of a list request.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps the parameters into their valid ranges: Page >= 1 and
// 0 < Limit <= MaxLimit.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the zero-based slice offset of the page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Pagination is the derived, read-only projection of a list snapshot.
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
	Total       int  `json:"total"`
	Limit       int  `json:"limit"`
}

// TotalPages returns the number of pages needed to hold total items at the
// given limit. Zero items yield zero pages.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Derive computes the pagination projection for a page of a result set.
// HasNextPage holds exactly when CurrentPage < TotalPages, HasPrevPage
// exactly when CurrentPage > 1.
func Derive(total, page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	tp := TotalPages(total, limit)
	return Pagination{
		CurrentPage: page,
		TotalPages:  tp,
		HasNextPage: page < tp,
		HasPrevPage: page > 1,
		Total:       total,
		Limit:       limit,
	}
}
