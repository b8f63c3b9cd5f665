package book

import (
	"strings"

	"github.com/kassemshdy/aspire-library/internal/httperr"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Filter struct {
	Query    string
	Category string
	// Statuses is never empty after NewFilter.
	Statuses []Status
	Page     int
	PageSize int
}

func (f Filter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// NewFilter normalizes raw listing parameters. An empty status or "ALL"
// hides archived books; archived books are listed only when asked for.
func NewFilter(query, status, category string, page, pageSize int) (Filter, error) {
	f := Filter{
		Query:    strings.TrimSpace(query),
		Category: strings.TrimSpace(category),
		Page:     page,
		PageSize: pageSize,
	}

	status = strings.ToUpper(strings.TrimSpace(status))
	if status == "" || status == "ALL" {
		f.Statuses = []Status{StatusAvailable, StatusCheckedOut}
	} else {
		s, ok := ParseStatus(status)
		if !ok {
			return Filter{}, httperr.Validation("invalid_status", "Unknown book status: "+status)
		}
		f.Statuses = []Status{s}
	}

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}

	return f, nil
}
