package pagination

import (
	"net/url"
	"strconv"
)

// Params holds pagination parameters for list requests.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:    1,
		PerPage: 20,
	}
}

// Query encodes the pagination parameters into the given query values.
// Zero or negative values fall back to defaults; PerPage is capped at 100.
func (p Params) Query(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}

	page := p.Page
	if page <= 0 {
		page = 1
	}
	perPage := p.PerPage
	if perPage <= 0 {
		perPage = DefaultParams().PerPage
	}
	if perPage > 100 {
		perPage = 100
	}

	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

// Result is the paginated list envelope returned by the backend.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}
