package handler

import (
	"net/http"
	"strconv"
)

// Page sizes for the post listing. The dashboard renders posts in a grid
// of 20; MaxLimit keeps an export-style crawl from dragging whole
// histories through one query.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit/offset from the query string. Values that
// do not parse or are out of range fall back rather than failing the
// listing: a limit over the cap is clamped, everything else defaults.
func ParsePagination(r *http.Request) PaginationParams {
	params := PaginationParams{Limit: DefaultLimit}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		params.Limit = limit
		if limit > MaxLimit {
			params.Limit = MaxLimit
		}
	}

	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		params.Offset = offset
	}

	return params
}
