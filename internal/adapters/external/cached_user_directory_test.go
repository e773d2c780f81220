package external

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/adapters/database"
	"luna.app/internal/ports"
	"luna.app/internal/testutil"
	"luna.app/pkg/errors"
)

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, stderrors.New("connection reset")
}
func (brokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return stderrors.New("connection reset")
}
func (brokenCache) Delete(ctx context.Context, key string) error {
	return stderrors.New("connection reset")
}
func (brokenCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
func (brokenCache) Clear(ctx context.Context) error                      { return nil }

func setupDirectory(t *testing.T, cache ports.CacheProvider) (*CachedUserDirectory, ports.UserRepository, *testutil.Metrics, *testutil.Logger) {
	t.Helper()

	repo := database.NewUserRepositoryAdapter(testutil.NewDB(t))
	metrics := testutil.NewMetrics()
	logger := &testutil.Logger{}

	dir, err := NewCachedUserDirectory(CachedUserDirectoryParams{
		Repo:    repo,
		Cache:   cache,
		TTL:     time.Minute,
		Metrics: metrics,
		Logger:  logger,
	})
	require.NoError(t, err)
	return dir, repo, metrics, logger
}

func TestCachedUserDirectory_Get(t *testing.T) {
	dir, repo, metrics, _ := setupDirectory(t, NewMemoryCacheProvider())
	ctx := context.Background()
	u := testutil.CreateUser(t, repo, "mira", "token-1")

	first, err := dir.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "mira@example.com", first.Email)
	assert.Equal(t, 1, metrics.Count("cache_miss"))

	second, err := dir.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-1", second.FCMToken)
	assert.Equal(t, 1, metrics.Count("cache_hit"))
}

func TestCachedUserDirectory_Invalidate(t *testing.T) {
	dir, repo, metrics, _ := setupDirectory(t, NewMemoryCacheProvider())
	ctx := context.Background()
	u := testutil.CreateUser(t, repo, "mira", "")

	_, err := dir.Get(ctx, u.ID)
	require.NoError(t, err)

	u.FCMToken = "fresh"
	require.NoError(t, repo.Update(ctx, u))
	require.NoError(t, dir.Invalidate(ctx, u.ID))

	got, err := dir.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh", got.FCMToken)
	assert.Equal(t, 2, metrics.Count("cache_miss"))
}

func TestCachedUserDirectory_CacheFailureFallsThrough(t *testing.T) {
	dir, repo, metrics, logger := setupDirectory(t, brokenCache{})
	ctx := context.Background()
	u := testutil.CreateUser(t, repo, "mira", "")

	got, err := dir.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, 1, metrics.Count("cache_miss"))
	assert.True(t, logger.Has("warn", "User cache lookup failed"))
	assert.True(t, logger.Has("warn", "Failed to cache user"))

	assert.Error(t, dir.Invalidate(ctx, u.ID))
}

func TestCachedUserDirectory_NotFound(t *testing.T) {
	dir, _, _, _ := setupDirectory(t, NewMemoryCacheProvider())

	_, err := dir.Get(context.Background(), 404)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestNewCachedUserDirectory_Validation(t *testing.T) {
	_, err := NewCachedUserDirectory(CachedUserDirectoryParams{})
	assert.True(t, errors.IsValidationError(err))
}
