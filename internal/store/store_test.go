package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/pixa/internal/domain"
)

// backends returns a fresh store per backend so every contract test runs
// against both.
func backends(t *testing.T) map[string]func(t *testing.T) domain.ImageStore {
	t.Helper()
	return map[string]func(t *testing.T) domain.ImageStore{
		"sqlite-memory": func(t *testing.T) domain.ImageStore {
			s, err := NewSQLiteStore("", nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"sqlite-file": func(t *testing.T) domain.ImageStore {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "images.db"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
		"bolt": func(t *testing.T) domain.ImageStore {
			s, err := NewBoltStore(filepath.Join(t.TempDir(), "images.bolt"), nil)
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		},
	}
}

func img(id int64, term string, rank int) domain.Image {
	return domain.Image{
		ID:         id,
		SearchTerm: term,
		Rank:       rank,
		Tags:       fmt.Sprintf("tag%d", id),
		Type:       domain.ImageTypePhoto,
	}
}

func loadAll(t *testing.T, src domain.PageSource) []domain.Image {
	t.Helper()
	var out []domain.Image
	for page, err := range domain.Pages(context.Background(), src, 2) {
		require.NoError(t, err)
		out = append(out, page.Items...)
	}
	return out
}

func ids(images []domain.Image) []int64 {
	out := make([]int64, len(images))
	for i, im := range images {
		out[i] = im.ID
	}
	return out
}

func TestInsertAll_UpsertReplacesRow(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			require.NoError(t, s.InsertAll(ctx, []domain.Image{img(1, "cat", 0), img(2, "cat", 1)}))

			updated := img(1, "cats", 5)
			updated.Tags = "replaced"
			updated.Likes = 42
			require.NoError(t, s.InsertAll(ctx, []domain.Image{updated}))

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, n, "upsert must not duplicate")

			got := loadAll(t, s.Query("cats"))
			require.Len(t, got, 1)
			assert.Equal(t, int64(1), got[0].ID)
			assert.Equal(t, "replaced", got[0].Tags)
			assert.Equal(t, 42, got[0].Likes)
			assert.Equal(t, 5, got[0].Rank)
			assert.False(t, got[0].CachedAt.IsZero(), "store stamps CachedAt")
		})
	}
}

func TestInsertAll_DuplicateIDsInOneBatch(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			first := img(7, "dog", 0)
			last := img(7, "dog", 3)
			require.NoError(t, s.InsertAll(ctx, []domain.Image{first, last}))

			got := loadAll(t, s.Query(""))
			require.Len(t, got, 1)
			assert.Equal(t, 3, got[0].Rank, "last write wins")
		})
	}
}

func TestInsertAll_EmptyIsNoop(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			require.NoError(t, s.InsertAll(context.Background(), nil))
			n, err := s.Count(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestQuery_SubstringMatch(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			require.NoError(t, s.InsertAll(ctx, []domain.Image{
				img(1, "cat", 0),
				img(2, "bobcat", 0),
				img(3, "dog", 0),
				img(4, "Category", 0),
				img(5, "100%", 0),
				img(6, "1000", 0),
				img(7, "a_b", 0),
				img(8, "axb", 0),
			}))

			tests := []struct {
				term string
				want []int64
			}{
				{"cat", []int64{4, 2, 1}},
				{"CAT", []int64{4, 2, 1}},
				{"dog", []int64{3}},
				{"bird", nil},
				{"100%", []int64{5}},
				{"a_b", []int64{7}},
				{"", []int64{5, 6, 4, 7, 8, 2, 1, 3}},
			}
			for _, tt := range tests {
				got := loadAll(t, s.Query(tt.term))
				if tt.want == nil {
					assert.Empty(t, got, "term %q", tt.term)
					continue
				}
				assert.Equal(t, tt.want, ids(got), "term %q", tt.term)
			}
		})
	}
}

func TestQuery_OrderAndPaging(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			var batch []domain.Image
			for i := 0; i < 7; i++ {
				// Ranks inserted in reverse to prove ordering comes from the store
				batch = append(batch, img(int64(100+i), "sunset", 6-i))
			}
			require.NoError(t, s.InsertAll(ctx, batch))

			src := s.Query("sun")

			p1, err := src.Load(ctx, domain.PageRequest{Cursor: 0, Limit: 3})
			require.NoError(t, err)
			assert.Equal(t, []int64{106, 105, 104}, ids(p1.Items))
			assert.True(t, p1.HasMore)
			assert.Equal(t, 3, p1.NextCursor)

			p3, err := src.Load(ctx, domain.PageRequest{Cursor: 6, Limit: 3})
			require.NoError(t, err)
			assert.Equal(t, []int64{100}, ids(p3.Items))
			assert.False(t, p3.HasMore)

			past, err := src.Load(ctx, domain.PageRequest{Cursor: 50, Limit: 3})
			require.NoError(t, err)
			assert.Empty(t, past.Items)
			assert.False(t, past.HasMore)
		})
	}
}

func TestQuery_IsLazy(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			src := s.Query("cat")
			require.NoError(t, s.InsertAll(ctx, []domain.Image{img(1, "cat", 0)}))

			got := loadAll(t, src)
			assert.Equal(t, []int64{1}, ids(got), "rows inserted after Query are visible on Load")
		})
	}
}

func TestClearAll(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			require.NoError(t, s.InsertAll(ctx, []domain.Image{img(1, "cat", 0), img(2, "dog", 0)}))

			require.NoError(t, s.ClearAll(ctx))

			assert.Empty(t, loadAll(t, s.Query("")))
			assert.Empty(t, loadAll(t, s.Query("cat")))
			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Zero(t, n)

			// Still writable afterwards
			require.NoError(t, s.InsertAll(ctx, []domain.Image{img(3, "cat", 0)}))
			assert.Len(t, loadAll(t, s.Query("cat")), 1)
		})
	}
}

func TestTerms(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()
			require.NoError(t, s.InsertAll(ctx, []domain.Image{
				img(1, "dog", 0), img(2, "cat", 0), img(3, "cat", 1), img(4, "bird", 0),
			}))

			terms, err := s.Terms(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"bird", "cat", "dog"}, terms)
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			ctx := context.Background()

			var wg sync.WaitGroup
			for w := 0; w < 4; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					for i := 0; i < 10; i++ {
						id := int64(w*100 + i)
						assert.NoError(t, s.InsertAll(ctx, []domain.Image{img(id, "load", i)}))
						_, err := s.Query("load").Load(ctx, domain.PageRequest{Limit: 5})
						assert.NoError(t, err)
					}
				}(w)
			}
			wg.Wait()

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 40, n)
		})
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{Driver: DriverSQLite}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Config{Driver: DriverBolt, Path: filepath.Join(t.TempDir(), "c.bolt")}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(Config{Driver: DriverBolt}, nil)
	assert.Error(t, err, "bolt needs a path")

	_, err = Open(Config{Driver: "redis"}, nil)
	assert.Error(t, err)
}

func TestSQLiteStore_SchemaMismatchResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.InsertAll(ctx, []domain.Image{img(1, "cat", 0)}))
	require.NoError(t, s.db.Exec("PRAGMA user_version = 99").Error)
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "schema mismatch drops cached rows")

	var version int
	require.NoError(t, s.db.Raw("PRAGMA user_version").Scan(&version).Error)
	assert.Equal(t, schemaVersion, version)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(path, nil)
	require.NoError(t, err)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	require.NoError(t, s.InsertAll(ctx, []domain.Image{img(1, "cat", 0)}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	got := loadAll(t, s.Query("cat"))
	require.Len(t, got, 1)
	assert.True(t, fixed.Equal(got[0].CachedAt))
}

func TestBoltStore_SchemaMismatchResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.bolt")
	ctx := context.Background()

	s, err := NewBoltStore(path, nil)
	require.NoError(t, err)
	require.NoError(t, s.InsertAll(ctx, []domain.Image{img(1, "cat", 0)}))
	require.NoError(t, s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keySchemaVersion, []byte("99"))
	}))
	require.NoError(t, s.Close())

	s, err = NewBoltStore(path, nil)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestMatchTerm(t *testing.T) {
	assert.True(t, matchTerm("Bobcat", "CAT"))
	assert.True(t, matchTerm("anything", ""))
	assert.False(t, matchTerm("dog", "cat"))
	// Non-ASCII letters are compared exactly, as SQLite LIKE does
	assert.False(t, matchTerm("Ärger", "ä"))
	assert.True(t, matchTerm("Ärger", "Ä"))
}
