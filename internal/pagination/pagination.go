// Package pagination implements the page/limit query contract shared by all
// list endpoints.
package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Page struct {
	Current int
	Limit   int
}

// Envelope is the pagination block returned alongside list items.
type Envelope struct {
	Current    int  `json:"current"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// Parse reads `page` and `limit` query params, clamping to sane bounds.
// Defaults: page=1, limit=20.
func Parse(r *http.Request) Page {
	page := atoiDefault(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := atoiDefault(r.URL.Query().Get("limit"), DefaultLimit)
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Current: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Current - 1) * p.Limit
}

func (p Page) Envelope(total int) Envelope {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return Envelope{
		Current:    p.Current,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Current < totalPages,
		HasPrev:    p.Current > 1,
	}
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
