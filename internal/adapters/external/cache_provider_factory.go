package external

import (
	"fmt"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

type CacheProviderFactory struct{}

func NewCacheProviderFactory() *CacheProviderFactory {
	return &CacheProviderFactory{}
}

func (f *CacheProviderFactory) CreateCacheProvider(cfg ports.CacheConfig) (ports.CacheProvider, error) {
	switch cfg.Type {
	case BackendMemory:
		return NewMemoryCacheProvider(), nil
	case BackendRedis:
		provider, err := NewRedisCacheProviderAdapter(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return provider, nil
	default:
		return nil, errors.NewConfigurationError(
			fmt.Sprintf("unsupported cache type: %q", cfg.Type), nil)
	}
}
