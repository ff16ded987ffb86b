package catalog

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FatihaELHABTI/spring-react-keycloak-shop/internal/domain"
)

func setupRedisCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCache(client)
}

func TestRedisCache_MissBeforeSet(t *testing.T) {
	cache := setupRedisCache(t)

	_, err := cache.Get(context.Background())
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testCatalog))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, testCatalog, got)
}

func TestRedisCache_DeleteInvalidates(t *testing.T) {
	cache := setupRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, testCatalog))
	require.NoError(t, cache.Delete(ctx))

	_, err := cache.Get(ctx)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_EmptySnapshotIsAHit(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, []domain.Product{}))

	got, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
