package services

import (
	"fmt"
	"strings"

	"minishop/store"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ListParams are the paging and filter values accepted by list endpoints.
// Filter is the category name for product listings.
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Filter string
}

func (p ListParams) query() (store.Query, error) {
	if p.Page < 1 || p.Limit < 1 {
		return store.Query{}, fmt.Errorf("%w: page and limit must be at least 1", ErrInvalidInput)
	}
	limit := p.Limit
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return store.Query{Page: p.Page, Limit: limit, Search: strings.TrimSpace(p.Search)}, nil
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T
	Total int64
	Page  int
	Limit int
}

func newPage[T any](items []T, total int64, q store.Query) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, Total: total, Page: q.Page, Limit: q.Limit}
}

// TotalPages rounds up.
func (p *Page[T]) TotalPages() int {
	if p.Limit == 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}
