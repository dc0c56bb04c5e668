package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/porespective/backend/internal/domain"
	"github.com/porespective/backend/internal/infrastructure/observability"
)

// FileStore persists product records as one JSON object on disk, keyed by search query.
// The whole mapping is read and rewritten on every operation.
type FileStore struct {
	path   string
	mu     sync.Mutex
	now    func() time.Time
	logger zerolog.Logger
}

// NewFileStore creates a file-backed product cache at path
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:   path,
		now:    time.Now,
		logger: observability.Component("cache"),
	}
}

// Get returns the record for key if it was written less than maxAge ago.
// An entry that does not decode is a miss for that key only.
func (s *FileStore) Get(ctx context.Context, key string, maxAge time.Duration) (*domain.ProductRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	raw, ok := entries[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}

	var record *domain.ProductRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("undecodable cache entry, treating as miss")
		return nil, domain.ErrCacheMiss
	}
	if record == nil || !record.IsFresh(s.now(), maxAge) {
		return nil, domain.ErrCacheMiss
	}

	return record, nil
}

// Put stamps record and overwrites any prior entry for key.
// Other entries are written back exactly as read.
func (s *FileStore) Put(ctx context.Context, key string, record *domain.ProductRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	record.Stamp(s.now())
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %v", domain.ErrCacheIO, key, err)
	}
	entries[key] = raw

	return s.save(entries)
}

// load reads the top-level mapping; entries stay undecoded until asked for
func (s *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrCacheIO, s.path, err)
	}

	entries := make(map[string]json.RawMessage)
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrCacheIO, s.path, err)
	}

	return entries, nil
}

// save writes to a sibling temp file and renames it over the cache so readers never see a partial write
func (s *FileStore) save(entries map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", domain.ErrCacheIO, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %v", domain.ErrCacheIO, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", domain.ErrCacheIO, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", domain.ErrCacheIO, tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %v", domain.ErrCacheIO, s.path, err)
	}

	return nil
}
