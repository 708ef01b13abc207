// ===============================
// internal/models/pagination.go - Listing envelope shared by management surfaces
// ===============================

package models

// Page carries the common list parameters. Zero values are normalized by
// Normalize; sort columns are whitelisted per service before reaching SQL.
type Page struct {
	Number    int    `form:"page" json:"page"`
	Limit     int    `form:"limit" json:"limit"`
	SortBy    string `form:"sortBy" json:"sortBy"`
	SortOrder string `form:"sortOrder" json:"sortOrder"`
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func (p *Page) Normalize() {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.SortOrder != "asc" {
		p.SortOrder = "desc"
	}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// SortColumn resolves the requested sort key against a whitelist, falling
// back to the provided default. Keys are JSON field names, values columns.
func (p Page) SortColumn(allowed map[string]string, def string) string {
	if col, ok := allowed[p.SortBy]; ok {
		return col
	}
	return def
}

// PageMeta mirrors the pagination envelope the dashboard expects.
type PageMeta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func NewPageMeta(p Page, total int) PageMeta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{
		Page:       p.Number,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    p.Number < totalPages,
		HasPrev:    p.Number > 1,
	}
}
