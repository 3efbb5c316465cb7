// Package pagination provides optional limit/offset paging for history
// queries. By default a query returns the full history; a caller may narrow
// the window with limit and offset parameters.
package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// MaxLimit caps an explicitly requested page size.
const MaxLimit = 1000

// Params holds pagination parameters extracted from a request. A zero Limit
// means "no limit": the full history is returned.
type Params struct {
	Limit  int
	Offset int
}

// FromContext extracts pagination parameters from the echo context.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	if p.Limit <= 0 {
		return false
	}
	return p.Offset+p.Limit < total
}
