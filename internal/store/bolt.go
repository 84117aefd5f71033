package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/mmcdole/pixa/internal/domain"
)

// Bucket names
var (
	bucketImages = []byte("images")
	bucketMeta   = []byte("meta")

	keySchemaVersion = []byte("schema_version")
)

// BoltStore implements domain.ImageStore using BoltDB.
// Rows are JSON encoded and keyed by big-endian image ID.
type BoltStore struct {
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex   // Protects snapshot and gen
	snapshot []domain.Image // Sorted decode of the images bucket, nil when stale
	gen      uint64         // Bumped on every write
}

// NewBoltStore opens (or creates) the bolt file at path
func NewBoltStore(path string, logger *slog.Logger) (*BoltStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		return nil, fmt.Errorf("bolt cache requires a file path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db, logger: logger, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema creates buckets and wipes images on a schema version change
func (s *BoltStore) ensureSchema() error {
	want := []byte(strconv.Itoa(schemaVersion))

	return s.db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}

		if got := meta.Get(keySchemaVersion); got != nil && string(got) != string(want) {
			s.logger.Warn("cache schema changed, dropping cached images", "from", string(got), "to", string(want))
			if err := tx.DeleteBucket(bucketImages); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}

		if _, err := tx.CreateBucketIfNotExists(bucketImages); err != nil {
			return err
		}
		return meta.Put(keySchemaVersion, want)
	})
}

func imageKey(id int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(id))
	return k
}

// InsertAll upserts images in a single bolt transaction
func (s *BoltStore) InsertAll(ctx context.Context, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	now := s.now()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImages)
		for _, img := range images {
			if img.CachedAt.IsZero() {
				img.CachedAt = now
			}
			data, err := json.Marshal(toRow(img))
			if err != nil {
				return err
			}
			if err := b.Put(imageKey(img.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert images: %w", err)
	}

	s.invalidate()
	return nil
}

// Query returns a lazy page source over rows whose searchTerm contains term
func (s *BoltStore) Query(term string) domain.PageSource {
	return domain.PageSourceFunc(func(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
		all, err := s.all(ctx)
		if err != nil {
			return domain.Page{}, err
		}

		matched := all
		if term != "" {
			matched = make([]domain.Image, 0, len(all))
			for _, img := range all {
				if matchTerm(img.SearchTerm, term) {
					matched = append(matched, img)
				}
			}
		}
		return domain.SlicePage(matched, req), nil
	})
}

// all returns every cached image in query order, decoding the bucket only
// after a write has invalidated the previous snapshot
func (s *BoltStore) all(ctx context.Context) ([]domain.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	snap, gen := s.snapshot, s.gen
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	var images []domain.Image
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketImages)
		images = make([]domain.Image, 0, b.Stats().KeyN)
		return b.ForEach(func(_, v []byte) error {
			var row imageRow
			if err := json.Unmarshal(v, &row); err != nil {
				return err
			}
			images = append(images, row.toDomain())
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read images: %w", err)
	}
	sortImages(images)

	// A write that landed during the decode makes this result stale.
	s.mu.Lock()
	if s.gen == gen {
		s.snapshot = images
	}
	s.mu.Unlock()
	return images, nil
}

func (s *BoltStore) invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.gen++
	s.mu.Unlock()
}

// ClearAll deletes every row
func (s *BoltStore) ClearAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(bucketImages); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket(bucketImages)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}
	s.invalidate()
	return nil
}

// Terms returns the distinct search terms, sorted
func (s *BoltStore) Terms(ctx context.Context) ([]string, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	terms := make([]string, 0)
	for _, img := range all {
		terms = append(terms, img.SearchTerm)
	}
	return slices.Compact(terms), nil
}

// Count returns the number of cached rows
func (s *BoltStore) Count(ctx context.Context) (int, error) {
	all, err := s.all(ctx)
	if err != nil {
		return 0, err
	}
	return len(all), nil
}

func (s *BoltStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
