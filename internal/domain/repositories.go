package domain

import (
	"context"
)

// ImageSource provides remote image search
type ImageSource interface {
	// Search fetches one page of results for params.Query
	Search(ctx context.Context, params SearchParams) (SearchResult, error)
}

// ImageRepository is the single facade the UI and CLI talk to.
// It mediates between the remote source and the local cache.
type ImageRepository interface {
	// Search loads one page for term, fetching from the API as needed.
	// An empty term browses the cache only.
	Search(ctx context.Context, term string, req PageRequest) (Page, error)

	// Refresh forgets memoized remote pages for term, then searches
	Refresh(ctx context.Context, term string, req PageRequest) (Page, error)

	// Cached reads a page from the local cache without touching the network
	Cached(ctx context.Context, term string, req PageRequest) (Page, error)

	// ClearCache wipes the local cache
	ClearCache(ctx context.Context) error

	// Suggest ranks previously searched terms against prefix
	Suggest(ctx context.Context, prefix string, n int) ([]string, error)
}

// Launcher opens an image in an external application
type Launcher interface {
	Open(url string) error
}
