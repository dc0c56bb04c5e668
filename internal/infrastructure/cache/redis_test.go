package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porespective/backend/internal/domain"
)

func TestRedisStore_RetentionSetsTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := NewRedisStore(client, 720*time.Hour)
	require.NoError(t, store.Put(context.Background(), "CeraVe", sampleRecord()))

	assert.True(t, mr.Exists("product:CeraVe"))
	assert.Equal(t, 720*time.Hour, mr.TTL("product:CeraVe"))

	mr.FastForward(721 * time.Hour)
	_, err := store.Get(context.Background(), "CeraVe", 10000*time.Hour)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := NewRedisStore(client, 0)

	mr.Close()

	_, err := store.Get(context.Background(), "CeraVe", time.Hour)
	assert.ErrorIs(t, err, domain.ErrCacheIO)
	assert.ErrorIs(t, store.Put(context.Background(), "CeraVe", sampleRecord()), domain.ErrCacheIO)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	client.Close()

	_, err = NewRedisClient(context.Background(), "not a url")
	assert.Error(t, err)
}
