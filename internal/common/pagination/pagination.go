package pagination

import (
	"net/http"
	"strconv"
)

// Params represents pagination parameters
type Params struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Response represents a paginated response
type Response[T any] struct {
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Total   int `json:"total"`
	Results []T `json:"results"`
}

// DefaultLimit is the default number of items per page
const DefaultLimit = 50

// MaxLimit is the maximum allowed items per page
const MaxLimit = 500

// ParseParams extracts the limit and offset query parameters. A missing,
// malformed or out-of-range limit falls back to DefaultLimit; a negative
// offset to 0.
func ParseParams(r *http.Request) Params {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 || limit > MaxLimit {
		limit = DefaultLimit
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// NewResponse creates a new paginated response. Results is never nil.
func NewResponse[T any](results []T, params Params, total int) Response[T] {
	if results == nil {
		results = []T{}
	}
	return Response[T]{
		Limit:   params.Limit,
		Offset:  params.Offset,
		Total:   total,
		Results: results,
	}
}

// HasMore reports whether items follow the page.
func (r Response[T]) HasMore() bool {
	return r.Offset+len(r.Results) < r.Total
}
