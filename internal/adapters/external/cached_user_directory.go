package external

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// CachedUserDirectory serves profile lookups from a cache in front of the
// user repository. Cache failures fall through to the repository.
type CachedUserDirectory struct {
	repo    ports.UserRepository
	cache   ports.CacheProvider
	ttl     time.Duration
	metrics ports.MetricsCollector
	logger  ports.Logger
}

type CachedUserDirectoryParams struct {
	Repo    ports.UserRepository
	Cache   ports.CacheProvider
	TTL     time.Duration
	Metrics ports.MetricsCollector
	Logger  ports.Logger
}

func NewCachedUserDirectory(params CachedUserDirectoryParams) (*CachedUserDirectory, error) {
	if params.Repo == nil {
		return nil, errors.NewValidationError("user repository is required")
	}
	if params.Cache == nil {
		return nil, errors.NewValidationError("cache provider is required")
	}
	if params.Metrics == nil {
		return nil, errors.NewValidationError("metrics collector is required")
	}
	if params.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if params.TTL <= 0 {
		return nil, errors.NewValidationError("cache TTL must be positive")
	}

	return &CachedUserDirectory{
		repo:    params.Repo,
		cache:   params.Cache,
		ttl:     params.TTL,
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

func userCacheKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// Get returns the user profile, preferring the cached copy
func (d *CachedUserDirectory) Get(ctx context.Context, userID uint) (*ports.UserData, error) {
	key := userCacheKey(userID)

	raw, err := d.cache.Get(ctx, key)
	switch {
	case err == nil:
		var user ports.UserData
		if jsonErr := json.Unmarshal(raw, &user); jsonErr == nil {
			d.metrics.RecordCacheHit(ctx)
			return &user, nil
		}
		d.logger.Warn("Discarding undecodable cached user", ports.F("key", key))
	case !errors.IsNotFoundError(err):
		d.logger.Warn("User cache lookup failed", ports.F("key", key), ports.F("error", err))
	}
	d.metrics.RecordCacheMiss(ctx)

	user, err := d.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(user); err == nil {
		if err := d.cache.Set(ctx, key, raw, d.ttl); err != nil {
			d.logger.Warn("Failed to cache user", ports.F("key", key), ports.F("error", err))
		}
	}

	return user, nil
}

// Invalidate drops the cached profile
func (d *CachedUserDirectory) Invalidate(ctx context.Context, userID uint) error {
	if err := d.cache.Delete(ctx, userCacheKey(userID)); err != nil {
		return fmt.Errorf("invalidate user %d: %w", userID, err)
	}
	return nil
}
