package external

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// newRedisClient connects to Redis and verifies the connection with a ping
func newRedisClient(cfg ports.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.NewConfigurationError("redis address cannot be empty", nil)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  time.Duration(cfg.DialTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewExternalAPIError("failed to connect to Redis", err)
	}

	return client, nil
}
