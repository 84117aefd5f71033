package domain

import (
	"context"
	"iter"
)

// DefaultPageSize is used when a PageRequest carries no limit
const DefaultPageSize = 20

// PageRequest addresses one page by integer offset
type PageRequest struct {
	Cursor int // Offset of the first item
	Limit  int // Maximum items to return
}

// Normalize fills defaults and clamps negative values
func (r PageRequest) Normalize() PageRequest {
	if r.Cursor < 0 {
		r.Cursor = 0
	}
	if r.Limit <= 0 {
		r.Limit = DefaultPageSize
	}
	return r
}

// Page is one bounded slice of a result sequence
type Page struct {
	Items      []Image
	Cursor     int  // Offset of Items[0]
	NextCursor int  // Offset to request next; valid when HasMore
	HasMore    bool // More items exist past this page
	Stale      bool // Served from cache because the API was unavailable
}

// PageSource produces pages on demand
type PageSource interface {
	Load(ctx context.Context, req PageRequest) (Page, error)
}

// PageSourceFunc adapts a function to PageSource
type PageSourceFunc func(ctx context.Context, req PageRequest) (Page, error)

func (f PageSourceFunc) Load(ctx context.Context, req PageRequest) (Page, error) {
	return f(ctx, req)
}

// Pages walks src from the beginning, yielding one page at a time.
// Iteration stops after the last page or the first error.
func Pages(ctx context.Context, src PageSource, limit int) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		req := PageRequest{Limit: limit}.Normalize()
		for {
			if err := ctx.Err(); err != nil {
				yield(Page{}, err)
				return
			}
			page, err := src.Load(ctx, req)
			if err != nil {
				yield(Page{}, err)
				return
			}
			if !yield(page, nil) || !page.HasMore || page.NextCursor <= req.Cursor {
				return
			}
			req.Cursor = page.NextCursor
		}
	}
}

// SlicePage cuts a page out of an already materialized result
func SlicePage(all []Image, req PageRequest) Page {
	req = req.Normalize()
	page := Page{Cursor: req.Cursor, NextCursor: req.Cursor}
	if req.Cursor >= len(all) {
		return page
	}
	end := min(req.Cursor+req.Limit, len(all))
	page.Items = append([]Image(nil), all[req.Cursor:end]...)
	page.NextCursor = end
	page.HasMore = end < len(all)
	return page
}
