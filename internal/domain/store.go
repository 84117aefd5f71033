package domain

import "context"

// ImageStore is the local image cache.
// Implementations must be safe for concurrent use.
type ImageStore interface {
	// InsertAll upserts images in one transaction, replacing rows that
	// share an ID. An empty slice is a no-op.
	InsertAll(ctx context.Context, images []Image) error

	// Query returns a lazy source over rows whose search term contains term.
	// No I/O happens until the source is loaded.
	Query(term string) PageSource

	// ClearAll deletes every row
	ClearAll(ctx context.Context) error

	// Terms returns the distinct search terms present in the cache
	Terms(ctx context.Context) ([]string, error)

	// Count returns the number of cached rows
	Count(ctx context.Context) (int, error)

	Close() error
}
