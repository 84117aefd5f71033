// Package store implements the local image cache.
//
// Two backends share one contract: a SQLite table via gorm (default) and a
// bbolt key/value file. Both upsert by image ID, match search terms as an
// ASCII case-insensitive substring, and order results by
// (search term, rank, id).
package store

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mmcdole/pixa/internal/domain"
)

// schemaVersion is bumped whenever the persisted row shape changes.
// A mismatch drops all cached rows; there is no migration path.
const schemaVersion = 1

// Driver names a backend
type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverBolt   Driver = "bolt"
)

// Config selects and locates a backend
type Config struct {
	Driver Driver
	Path   string // empty opens an in-memory database (sqlite only)
}

// Open creates the configured store
func Open(cfg Config, logger *slog.Logger) (domain.ImageStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Driver {
	case DriverSQLite, "":
		return NewSQLiteStore(cfg.Path, logger)
	case DriverBolt:
		return NewBoltStore(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown cache driver: %s", cfg.Driver)
	}
}

// matchTerm reports whether searchTerm contains term, folding ASCII case
// only. This mirrors SQLite's default LIKE behavior.
func matchTerm(searchTerm, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(asciiLower(searchTerm), asciiLower(term))
}

func asciiLower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; 'A' <= c && c <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// escapeLike escapes LIKE wildcards so term matches literally.
// The escape character is a backslash.
func escapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// sortImages orders images by (SearchTerm, Rank, ID)
func sortImages(images []domain.Image) {
	slices.SortFunc(images, func(a, b domain.Image) int {
		return cmp.Or(
			cmp.Compare(a.SearchTerm, b.SearchTerm),
			cmp.Compare(a.Rank, b.Rank),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// dedupe keeps the last occurrence of each ID, preserving first-seen order
func dedupe(images []domain.Image) []domain.Image {
	idx := make(map[int64]int, len(images))
	out := make([]domain.Image, 0, len(images))
	for _, img := range images {
		if i, ok := idx[img.ID]; ok {
			out[i] = img
			continue
		}
		idx[img.ID] = len(out)
		out = append(out, img)
	}
	return out
}
