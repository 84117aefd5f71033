package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLogger "gorm.io/gorm/logger"

	"github.com/mmcdole/pixa/internal/domain"
)

const insertBatchSize = 100

// SQLiteStore implements domain.ImageStore on a SQLite table.
type SQLiteStore struct {
	db     *gorm.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path. An empty path
// opens a private in-memory database.
func NewSQLiteStore(path string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
		// WAL lets readers proceed while the single writer commits.
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite cache: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	// One connection: serializes writers and keeps an in-memory database alive.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// ensureSchema recreates image_table when the stored schema version differs
func (s *SQLiteStore) ensureSchema() error {
	var version int
	if err := s.db.Raw("PRAGMA user_version").Scan(&version).Error; err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version != schemaVersion {
		if version != 0 {
			s.logger.Warn("cache schema changed, dropping cached images", "from", version, "to", schemaVersion)
		}
		if err := s.db.Migrator().DropTable(&imageRow{}); err != nil {
			return fmt.Errorf("failed to drop image table: %w", err)
		}
	}

	if err := s.db.AutoMigrate(&imageRow{}); err != nil {
		return fmt.Errorf("failed to migrate image table: %w", err)
	}

	if version != schemaVersion {
		if err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)).Error; err != nil {
			return fmt.Errorf("failed to write schema version: %w", err)
		}
	}
	return nil
}

// InsertAll upserts images in one transaction
func (s *SQLiteStore) InsertAll(ctx context.Context, images []domain.Image) error {
	if len(images) == 0 {
		return nil
	}

	now := s.now()
	images = dedupe(images)
	rows := make([]imageRow, len(images))
	for i, img := range images {
		if img.CachedAt.IsZero() {
			img.CachedAt = now
		}
		rows[i] = toRow(img)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).CreateInBatches(&rows, insertBatchSize).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert images: %w", err)
	}
	return nil
}

// Query returns a lazy page source over rows whose searchTerm contains term
func (s *SQLiteStore) Query(term string) domain.PageSource {
	return domain.PageSourceFunc(func(ctx context.Context, req domain.PageRequest) (domain.Page, error) {
		return s.loadPage(ctx, term, req)
	})
}

func (s *SQLiteStore) loadPage(ctx context.Context, term string, req domain.PageRequest) (domain.Page, error) {
	req = req.Normalize()

	q := s.db.WithContext(ctx).Model(&imageRow{})
	if term != "" {
		q = q.Where(`searchTerm LIKE ? ESCAPE '\'`, "%"+escapeLike(term)+"%")
	}

	// Fetch one extra row to learn whether another page exists.
	var rows []imageRow
	err := q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: "searchTerm"}},
		{Column: clause.Column{Name: "rank"}},
		{Column: clause.Column{Name: "id"}},
	}}).Offset(req.Cursor).Limit(req.Limit + 1).Find(&rows).Error
	if err != nil {
		return domain.Page{}, fmt.Errorf("failed to query images: %w", err)
	}

	page := domain.Page{Cursor: req.Cursor, NextCursor: req.Cursor}
	if len(rows) > req.Limit {
		page.HasMore = true
		rows = rows[:req.Limit]
	}
	page.Items = make([]domain.Image, len(rows))
	for i, r := range rows {
		page.Items[i] = r.toDomain()
	}
	page.NextCursor = req.Cursor + len(rows)
	return page, nil
}

// ClearAll deletes every row
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	err := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&imageRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear images: %w", err)
	}
	return nil
}

// Terms returns the distinct search terms, sorted
func (s *SQLiteStore) Terms(ctx context.Context) ([]string, error) {
	var terms []string
	err := s.db.WithContext(ctx).Model(&imageRow{}).
		Distinct("searchTerm").
		Order("searchTerm").
		Pluck("searchTerm", &terms).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list terms: %w", err)
	}
	return terms, nil
}

// Count returns the number of cached rows
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&imageRow{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count images: %w", err)
	}
	return int(n), nil
}

// Close releases the database handle
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if err := sqlDB.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return err
	}
	return nil
}
