package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/porespective/backend/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps product records in an embedded SQLite table with atomic upserts
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Single writer avoids SQLITE_BUSY on concurrent upserts
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS product_cache (
		cache_key TEXT PRIMARY KEY,
		record_json TEXT NOT NULL,
		last_updated INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_product_cache_updated ON product_cache(last_updated);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Get returns the record for key if it was written less than maxAge ago
func (s *SQLiteStore) Get(ctx context.Context, key string, maxAge time.Duration) (*domain.ProductRecord, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT record_json FROM product_cache WHERE cache_key = ?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", domain.ErrCacheIO, key, err)
	}

	var record domain.ProductRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrCacheIO, key, err)
	}

	if !record.IsFresh(s.now(), maxAge) {
		return nil, domain.ErrCacheMiss
	}

	return &record, nil
}

// Put stamps record and upserts it under key
func (s *SQLiteStore) Put(ctx context.Context, key string, record *domain.ProductRecord) error {
	record.Stamp(s.now())

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrCacheIO, key, err)
	}

	query := `
	INSERT INTO product_cache (cache_key, record_json, last_updated)
	VALUES (?, ?, ?)
	ON CONFLICT(cache_key) DO UPDATE SET
		record_json = excluded.record_json,
		last_updated = excluded.last_updated`

	if _, err := s.db.ExecContext(ctx, query, key, string(data), record.LastUpdated.Unix()); err != nil {
		return fmt.Errorf("%w: upsert %s: %v", domain.ErrCacheIO, key, err)
	}

	return nil
}

// PurgeOlderThan deletes entries last written before cutoff and returns how many were removed
func (s *SQLiteStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM product_cache WHERE last_updated < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("%w: purge: %v", domain.ErrCacheIO, err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
