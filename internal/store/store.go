// Package store persists registered links in SQLite and feeds the
// resolver its set of valid codes. It is a thin registry on purpose:
// one table, unique codes, a scan counter.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	// ErrCodeTaken is returned when a code is already registered.
	// Callers retry with a freshly generated code.
	ErrCodeTaken = errors.New("code already registered")

	// ErrLinkNotFound is returned when no link exists for a code.
	ErrLinkNotFound = errors.New("link not found")
)

// Link is one registered short link.
type Link struct {
	ID            uint       `gorm:"primaryKey" json:"-"`
	Code          string     `gorm:"uniqueIndex;size:10" json:"code"`
	URL           string     `gorm:"not null" json:"url"`
	CreatedAt     time.Time  `json:"created_at"`
	ScanCount     int64      `json:"scan_count"`
	LastScannedAt *time.Time `json:"last_scanned_at,omitempty"`
}

// Store wraps the SQLite database holding registered links.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the link database at path and migrates the
// schema. Use ":memory:" for an ephemeral database in tests. GORM's own
// logging is silenced; the application logger does the talking.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening link database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Link{}); err != nil {
		return nil, fmt.Errorf("migrating link database: %w", err)
	}
	return &Store{db: db}, nil
}

// CreateLink registers code -> url. ErrCodeTaken is returned when the
// code is already present; the unique index backstops the check.
func (s *Store) CreateLink(ctx context.Context, code, url string) (*Link, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Link{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("checking code %s: %w", code, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCodeTaken, code)
	}

	link := &Link{Code: code, URL: url}
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return nil, fmt.Errorf("creating link %s: %w", code, err)
	}
	return link, nil
}

// FindByCode returns the link registered under code.
func (s *Store) FindByCode(ctx context.Context, code string) (*Link, error) {
	var link Link
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrLinkNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up code %s: %w", code, err)
	}
	return &link, nil
}

// Codes returns every registered code in insertion order. This is the
// valid-code set the resolver matches against; the stable order makes
// fuzzy tie-breaking deterministic.
func (s *Store) Codes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := s.db.WithContext(ctx).Model(&Link{}).Order("id").Pluck("code", &codes).Error; err != nil {
		return nil, fmt.Errorf("listing codes: %w", err)
	}
	return codes, nil
}

// List returns links newest first, up to limit (no limit when <= 0).
func (s *Store) List(ctx context.Context, limit int) ([]Link, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var links []Link
	if err := q.Find(&links).Error; err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}
	return links, nil
}

// Count returns the number of registered links.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&Link{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("counting links: %w", err)
	}
	return n, nil
}

// RecordScan bumps the scan counter and stamps the scan time for code.
func (s *Store) RecordScan(ctx context.Context, code string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&Link{}).
		Where("code = ?", code).
		Updates(map[string]any{
			"scan_count":      gorm.Expr("scan_count + 1"),
			"last_scanned_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("recording scan for %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, code)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
