package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/viccon/sturdyc"

	"github.com/mmcdole/pixa/internal/domain"
)

const (
	minPerPage = 3
	maxPerPage = 200

	memoShards          = 10
	memoEvictionPercent = 10
)

// Options tunes remote fetching
type Options struct {
	PageSize     int // Remote page size (per_page), clamped to 3..200
	SafeSearch   bool
	Order        string
	MemoTTL      time.Duration // How long fetched pages are reused
	MemoCapacity int           // Max memoized pages, 0 disables memoization
}

// Repository is the single data facade. Search results come from the API
// through a short-lived page memo and are written through to the store;
// the store alone serves cache browsing and offline fallback.
type Repository struct {
	source domain.ImageSource // nil when no API key is configured
	store  domain.ImageStore
	memo   *sturdyc.Client[domain.SearchResult]
	opts   Options
	logger *slog.Logger
}

// NewRepository creates the facade. A nil source limits it to the cache.
func NewRepository(source domain.ImageSource, store domain.ImageStore, opts Options, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PageSize == 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	opts.PageSize = min(max(opts.PageSize, minPerPage), maxPerPage)
	if opts.MemoTTL <= 0 {
		opts.MemoTTL = 10 * time.Minute
	}

	r := &Repository{
		source: source,
		store:  store,
		opts:   opts,
		logger: logger,
	}
	if opts.MemoCapacity > 0 {
		shards := min(memoShards, opts.MemoCapacity)
		r.memo = sturdyc.New[domain.SearchResult](opts.MemoCapacity, shards, opts.MemoTTL, memoEvictionPercent)
	}
	return r
}

// Search loads one page of results for term. The API is consulted for the
// remote pages that cover req; an empty term browses the cache.
func (r *Repository) Search(ctx context.Context, term string, req domain.PageRequest) (domain.Page, error) {
	term = strings.TrimSpace(term)
	req = req.Normalize()

	if term == "" {
		return r.Cached(ctx, "", req)
	}

	page, err := r.searchRemote(ctx, term, req)
	if err == nil {
		return page, nil
	}
	if !isFallbackError(err) {
		return domain.Page{}, err
	}

	local, lerr := r.Cached(ctx, term, req)
	if lerr != nil || len(local.Items) == 0 {
		return domain.Page{}, err
	}
	r.logger.Warn("serving cached results", "term", term, "cursor", req.Cursor, "error", err)
	local.Stale = true
	return local, nil
}

// Refresh drops memoized pages for term before searching
func (r *Repository) Refresh(ctx context.Context, term string, req domain.PageRequest) (domain.Page, error) {
	r.forget(strings.TrimSpace(term))
	return r.Search(ctx, term, req)
}

// Cached reads a page from the store only
func (r *Repository) Cached(ctx context.Context, term string, req domain.PageRequest) (domain.Page, error) {
	return r.store.Query(strings.TrimSpace(term)).Load(ctx, req.Normalize())
}

// ClearCache wipes the store and the page memo
func (r *Repository) ClearCache(ctx context.Context) error {
	if err := r.store.ClearAll(ctx); err != nil {
		return err
	}
	if r.memo != nil {
		for _, key := range r.memo.ScanKeys() {
			r.memo.Delete(key)
		}
	}
	r.logger.Info("cache cleared")
	return nil
}

// searchRemote assembles the requested window from remote pages.
// Ranks are positions in the remote order, so the window is exact even
// when it straddles a remote page boundary.
func (r *Repository) searchRemote(ctx context.Context, term string, req domain.PageRequest) (domain.Page, error) {
	if r.source == nil {
		return domain.Page{}, domain.ErrNotConfigured
	}

	perPage := r.opts.PageSize
	start := req.Cursor
	end := req.Cursor + req.Limit
	accessible := domain.MaxAccessibleHits

	var window []domain.Image
	for p := start/perPage + 1; (p-1)*perPage < min(end, accessible); p++ {
		res, err := r.fetchPage(ctx, domain.SearchParams{
			Query:      term,
			Page:       p,
			PerPage:    perPage,
			SafeSearch: r.opts.SafeSearch,
			Order:      r.opts.Order,
		})
		if errors.Is(err, domain.ErrPageOutOfRange) {
			// Cursor lies past the last hit
			accessible = min(accessible, (p-1)*perPage)
			break
		}
		if err != nil {
			return domain.Page{}, err
		}

		accessible = min(res.TotalHits, domain.MaxAccessibleHits)
		for _, img := range res.Images {
			if img.Rank >= start && img.Rank < end && img.Rank < accessible {
				window = append(window, img)
			}
		}
		if len(res.Images) < perPage {
			// Short page: nothing beyond it
			accessible = min(accessible, (p-1)*perPage+len(res.Images))
			break
		}
	}

	page := domain.Page{
		Items:      window,
		Cursor:     req.Cursor,
		NextCursor: req.Cursor + len(window),
	}
	page.HasMore = len(window) > 0 && page.NextCursor < accessible
	return page, nil
}

// fetchPage returns one remote page, memoized, with SearchTerm and Rank
// filled in. Fresh pages are written through to the store.
func (r *Repository) fetchPage(ctx context.Context, params domain.SearchParams) (domain.SearchResult, error) {
	fetch := func(ctx context.Context) (domain.SearchResult, error) {
		res, err := r.source.Search(ctx, params)
		if err != nil {
			return domain.SearchResult{}, err
		}

		base := (params.Page - 1) * params.PerPage
		for i := range res.Images {
			res.Images[i].SearchTerm = params.Query
			res.Images[i].Rank = base + i
		}

		if err := r.store.InsertAll(ctx, res.Images); err != nil {
			return domain.SearchResult{}, fmt.Errorf("failed to cache results: %w", err)
		}
		r.logger.Debug("fetched remote page", "term", params.Query, "page", params.Page, "hits", len(res.Images), "totalHits", res.TotalHits)
		return res, nil
	}

	if r.memo == nil {
		return fetch(ctx)
	}
	return r.memo.GetOrFetch(ctx, memoKey(params), fetch)
}

// forget drops every memoized page of term
func (r *Repository) forget(term string) {
	if r.memo == nil {
		return
	}
	prefix := memoPrefix(term)
	for _, key := range r.memo.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			r.memo.Delete(key)
		}
	}
}

// isFallbackError reports whether cached results may stand in for err
func isFallbackError(err error) bool {
	return domain.IsTransient(err) || errors.Is(err, domain.ErrNotConfigured)
}
