package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imagesN(n int) []Image {
	out := make([]Image, n)
	for i := range out {
		out[i] = Image{ID: int64(i + 1)}
	}
	return out
}

func TestPageRequestNormalize(t *testing.T) {
	t.Parallel()

	r := PageRequest{Cursor: -4, Limit: 0}.Normalize()
	assert.Equal(t, 0, r.Cursor)
	assert.Equal(t, DefaultPageSize, r.Limit)

	r = PageRequest{Cursor: 10, Limit: 5}.Normalize()
	assert.Equal(t, PageRequest{Cursor: 10, Limit: 5}, r)
}

func TestSlicePage(t *testing.T) {
	t.Parallel()

	all := imagesN(7)
	tests := []struct {
		name     string
		req      PageRequest
		wantIDs  []int64
		wantNext int
		wantMore bool
	}{
		{"first page", PageRequest{Cursor: 0, Limit: 3}, []int64{1, 2, 3}, 3, true},
		{"middle page", PageRequest{Cursor: 3, Limit: 3}, []int64{4, 5, 6}, 6, true},
		{"last partial page", PageRequest{Cursor: 6, Limit: 3}, []int64{7}, 7, false},
		{"past end", PageRequest{Cursor: 9, Limit: 3}, nil, 9, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := SlicePage(all, tt.req)
			var ids []int64
			for _, img := range page.Items {
				ids = append(ids, img.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.req.Cursor, page.Cursor)
			assert.Equal(t, tt.wantNext, page.NextCursor)
			assert.Equal(t, tt.wantMore, page.HasMore)
		})
	}
}

func TestPagesWalksForward(t *testing.T) {
	t.Parallel()

	all := imagesN(10)
	var loads int
	src := PageSourceFunc(func(_ context.Context, req PageRequest) (Page, error) {
		loads++
		return SlicePage(all, req), nil
	})

	var seen []int64
	for page, err := range Pages(context.Background(), src, 4) {
		require.NoError(t, err)
		assert.LessOrEqual(t, len(page.Items), 4)
		for _, img := range page.Items {
			seen = append(seen, img.ID)
		}
	}

	assert.Len(t, seen, 10)
	assert.Equal(t, 3, loads)
}

func TestPagesIsLazy(t *testing.T) {
	t.Parallel()

	var loads int
	src := PageSourceFunc(func(_ context.Context, req PageRequest) (Page, error) {
		loads++
		return Page{Cursor: req.Cursor, NextCursor: req.Cursor + req.Limit, HasMore: true}, nil
	})

	seq := Pages(context.Background(), src, 5)
	assert.Zero(t, loads)

	for range seq {
		break
	}
	assert.Equal(t, 1, loads)
}

func TestPagesStopsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := PageSourceFunc(func(context.Context, PageRequest) (Page, error) {
		return Page{}, boom
	})

	var errs int
	for _, err := range Pages(context.Background(), src, 5) {
		require.ErrorIs(t, err, boom)
		errs++
	}
	assert.Equal(t, 1, errs)
}
