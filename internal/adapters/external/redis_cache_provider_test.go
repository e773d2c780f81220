package external

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// setupMockRedis creates a mock Redis server for testing
func setupMockRedis(t *testing.T) (*miniredis.Miniredis, ports.RedisConfig) {
	t.Helper()

	mockRedis := miniredis.RunT(t)
	return mockRedis, ports.RedisConfig{
		Addr:         mockRedis.Addr(),
		DialTimeout:  5,
		ReadTimeout:  3,
		WriteTimeout: 3,
	}
}

func TestRedisCacheProviderAdapter_New(t *testing.T) {
	_, cfg := setupMockRedis(t)

	tests := []struct {
		name      string
		config    ports.RedisConfig
		errorType errors.ErrorType
	}{
		{"ValidConfig", cfg, 0},
		{"EmptyAddress", ports.RedisConfig{}, errors.ErrorTypeConfiguration},
		{"InvalidAddress", ports.RedisConfig{Addr: "invalid:address:port", DialTimeout: 1}, errors.ErrorTypeExternalAPI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewRedisCacheProviderAdapter(tt.config)
			if tt.errorType == 0 {
				require.NoError(t, err)
				assert.NoError(t, provider.Close())
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.errorType, errors.TypeOf(err))
		})
	}
}

func TestRedisCacheProviderAdapter_Operations(t *testing.T) {
	mockRedis, cfg := setupMockRedis(t)
	provider, err := NewRedisCacheProviderAdapter(cfg)
	require.NoError(t, err)
	defer provider.Close()
	ctx := context.Background()

	_, err = provider.Get(ctx, "user:1")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, provider.Set(ctx, "user:1", []byte(`{"ID":1}`), time.Minute))
	assert.True(t, mockRedis.Exists("cache:user:1"))

	value, err := provider.Get(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, `{"ID":1}`, string(value))

	exists, err := provider.Exists(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, exists)

	stats := provider.GetStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.001)

	mockRedis.FastForward(2 * time.Minute)
	_, err = provider.Get(ctx, "user:1")
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, provider.Set(ctx, "user:2", []byte("x"), time.Minute))
	require.NoError(t, provider.Delete(ctx, "user:2"))
	exists, err = provider.Exists(ctx, "user:2")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.True(t, errors.IsValidationError(provider.Set(ctx, "", []byte("x"), time.Minute)))
	assert.True(t, errors.IsValidationError(provider.Set(ctx, "k", []byte("x"), 0)))
}

func TestRedisCacheProviderAdapter_ClearKeepsForeignKeys(t *testing.T) {
	mockRedis, cfg := setupMockRedis(t)
	provider, err := NewRedisCacheProviderAdapter(cfg)
	require.NoError(t, err)
	defer provider.Close()
	ctx := context.Background()

	_, err = mockRedis.Lpush("email:jobs", "pending")
	require.NoError(t, err)
	require.NoError(t, provider.Set(ctx, "user:1", []byte("a"), time.Minute))
	require.NoError(t, provider.Set(ctx, "user:2", []byte("b"), time.Minute))

	require.NoError(t, provider.Clear(ctx))

	assert.False(t, mockRedis.Exists("cache:user:1"))
	assert.False(t, mockRedis.Exists("cache:user:2"))
	assert.True(t, mockRedis.Exists("email:jobs"))
}
