package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/config"
)

func TestConfigProviderAdapter(t *testing.T) {
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.Cache.Type = config.BackendTypeRedis
	cfg.Redis.Addr = "redis:6379"
	cfg.Push.CredentialsFile = "/etc/luna/fcm.json"

	provider := NewConfigProviderAdapter(cfg)

	cycle := provider.GetCycleConfig()
	assert.Equal(t, 28, cycle.DefaultCycleLength)
	assert.Equal(t, 10, cycle.SpacingDays)

	n := provider.GetNotificationConfig()
	assert.Equal(t, time.Minute, n.DedupeWindow)
	assert.Equal(t, 24*time.Hour, n.MutationIrregularityWindow)
	assert.Equal(t, 7*24*time.Hour, n.DailyIrregularityWindow)

	cache := provider.GetCacheConfig()
	assert.Equal(t, "redis", cache.Type)
	assert.Equal(t, 10*time.Minute, cache.TTL)
	assert.Equal(t, "redis:6379", cache.Redis.Addr)

	queue := provider.GetQueueConfig()
	assert.Equal(t, "memory", queue.Type)
	assert.Equal(t, 3, queue.MaxAttempts)
	assert.Equal(t, "redis:6379", queue.Redis.Addr)

	assert.Equal(t, 24*time.Hour, provider.GetSchedulerConfig().DailyCheckInterval)
	push := provider.GetPushConfig()
	assert.Equal(t, 10*time.Second, push.Timeout)
	assert.Equal(t, "/etc/luna/fcm.json", push.CredentialsFile)
	assert.Equal(t, 8080, provider.GetServerConfig().Port)
	assert.Equal(t, "luna", provider.GetDatabaseConfig().Name)
	assert.Equal(t, 587, provider.GetEmailConfig().SMTPPort)
}
