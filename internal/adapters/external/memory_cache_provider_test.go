package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/pkg/errors"
)

func TestMemoryCacheProvider_Expiry(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := NewMemoryCacheProvider()
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user:1", []byte("a"), time.Minute))

	value, err := cache.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), value)

	now = now.Add(2 * time.Minute)
	exists, err := cache.Exists(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = cache.Get(ctx, "user:1")
	assert.True(t, errors.IsNotFoundError(err))

	cache.mutex.RLock()
	_, stillThere := cache.data["user:1"]
	cache.mutex.RUnlock()
	assert.False(t, stillThere)

	stats := cache.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(2), stats.TotalOps)
}

func TestMemoryCacheProvider_DeleteAndClear(t *testing.T) {
	cache := NewMemoryCacheProvider()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, cache.Set(ctx, "b", []byte("2"), time.Minute))

	require.NoError(t, cache.Delete(ctx, "a"))
	_, err := cache.Get(ctx, "a")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, cache.Clear(ctx))
	_, err = cache.Get(ctx, "b")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestMemoryCacheProvider_Validation(t *testing.T) {
	cache := NewMemoryCacheProvider()
	ctx := context.Background()

	_, err := cache.Get(ctx, "")
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, errors.IsValidationError(cache.Set(ctx, "k", nil, time.Minute)))
	assert.True(t, errors.IsValidationError(cache.Set(ctx, "k", []byte("v"), -time.Second)))
	assert.True(t, errors.IsValidationError(cache.Delete(ctx, "")))
}
