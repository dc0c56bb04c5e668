package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/porespective/backend/internal/domain"
)

const productKeyPrefix = "product:"

// RedisStore keeps product records in Redis as JSON strings
type RedisStore struct {
	client    *redis.Client
	retention time.Duration // redis-side expiry, 0 keeps keys forever
	now       func() time.Time
}

// NewRedisStore creates a product cache on top of an existing client.
// Freshness is still decided per call from LastUpdated; retention only bounds memory.
func NewRedisStore(client *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{
		client:    client,
		retention: retention,
		now:       time.Now,
	}
}

// NewRedisClient parses a redis:// URL and verifies the connection
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping redis: %v", domain.ErrCacheIO, err)
	}

	return client, nil
}

// Get retrieves a record if present and fresh
func (s *RedisStore) Get(ctx context.Context, key string, maxAge time.Duration) (*domain.ProductRecord, error) {
	data, err := s.client.Get(ctx, productKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get from cache: %v", domain.ErrCacheIO, err)
	}

	var record domain.ProductRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", domain.ErrCacheIO, key, err)
	}

	if !record.IsFresh(s.now(), maxAge) {
		return nil, domain.ErrCacheMiss
	}

	return &record, nil
}

// Put stamps and stores a record, replacing any previous value
func (s *RedisStore) Put(ctx context.Context, key string, record *domain.ProductRecord) error {
	record.Stamp(s.now())

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrCacheIO, key, err)
	}

	if err := s.client.Set(ctx, productKeyPrefix+key, data, s.retention).Err(); err != nil {
		return fmt.Errorf("%w: failed to set in cache: %v", domain.ErrCacheIO, err)
	}

	return nil
}
