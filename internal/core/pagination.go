// AngelaMos | 2026
// pagination.go

package core

import (
	"net/http"
	"strconv"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

// PageFromRequest reads ?page= and ?limit=, clamping bad values.
func PageFromRequest(r *http.Request, defaultLimit int) Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))   //nolint:errcheck // clamped below
	limit, _ := strconv.Atoi(q.Get("limit")) //nolint:errcheck // clamped below
	return Page{Page: page, Limit: limit}.Normalize(defaultLimit)
}

func (p Page) Normalize(defaultLimit int) Page {
	if defaultLimit <= 0 {
		defaultLimit = DefaultPageLimit
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Page) TotalPages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}
