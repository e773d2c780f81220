package infrastructure

import (
	"time"

	"luna.app/internal/config"
	"luna.app/internal/ports"
)

// ConfigProviderAdapter implements the ConfigProvider port
type ConfigProviderAdapter struct {
	config *config.Config
}

// NewConfigProviderAdapter creates a new config provider adapter
func NewConfigProviderAdapter(cfg *config.Config) *ConfigProviderAdapter {
	return &ConfigProviderAdapter{
		config: cfg,
	}
}

// GetCycleConfig returns prediction defaults and irregularity thresholds
func (c *ConfigProviderAdapter) GetCycleConfig() ports.CycleConfig {
	cycle := c.config.Cycle
	return ports.CycleConfig{
		DefaultCycleLength:  cycle.DefaultCycleLength,
		DefaultPeriodLength: cycle.DefaultPeriodLength,
		OverlapBufferDays:   cycle.OverlapBufferDays,
		SpacingDays:         cycle.SpacingDays,
		ShortCycleDays:      cycle.ShortCycleDays,
		LongCycleDays:       cycle.LongCycleDays,
		MissedPeriodDays:    cycle.MissedPeriodDays,
		HeavyFlowDays:       cycle.HeavyFlowDays,
		LightFlowDays:       cycle.LightFlowDays,
		FlowChecksEnabled:   cycle.FlowChecksEnabled,
	}
}

// GetNotificationConfig returns notification evaluation settings
func (c *ConfigProviderAdapter) GetNotificationConfig() ports.NotificationConfig {
	n := c.config.Notification
	return ports.NotificationConfig{
		DedupeWindow:               time.Duration(n.DedupeWindowSeconds) * time.Second,
		ApproachingHorizonDays:     n.ApproachingHorizonDays,
		LateThresholdDays:          n.LateThresholdDays,
		MutationIrregularityWindow: time.Duration(n.MutationIrregularityHours) * time.Hour,
		DailyIrregularityWindow:    time.Duration(n.DailyIrregularityHours) * time.Hour,
		IrregularityEmailEnabled:   n.IrregularityEmailEnabled,
	}
}

// GetServerConfig returns server configuration
func (c *ConfigProviderAdapter) GetServerConfig() ports.ServerConfig {
	return ports.ServerConfig{
		Port: c.config.Server.Port,
	}
}

// GetDatabaseConfig returns database configuration
func (c *ConfigProviderAdapter) GetDatabaseConfig() ports.DatabaseConfig {
	return ports.DatabaseConfig{
		Host:     c.config.Database.Host,
		Port:     c.config.Database.Port,
		User:     c.config.Database.User,
		Password: c.config.Database.Password,
		Name:     c.config.Database.Name,
		SSLMode:  c.config.Database.SSLMode,
	}
}

// GetPushConfig returns push gateway configuration
func (c *ConfigProviderAdapter) GetPushConfig() ports.PushConfig {
	return ports.PushConfig{
		Endpoint:        c.config.Push.Endpoint,
		CredentialsFile: c.config.Push.CredentialsFile,
		Timeout:         time.Duration(c.config.Push.TimeoutSeconds) * time.Second,
	}
}

// GetEmailConfig returns email configuration
func (c *ConfigProviderAdapter) GetEmailConfig() ports.EmailConfig {
	return ports.EmailConfig{
		SMTPHost:     c.config.Email.SMTPHost,
		SMTPPort:     c.config.Email.SMTPPort,
		SMTPUsername: c.config.Email.SMTPUsername,
		SMTPPassword: c.config.Email.SMTPPassword,
		FromName:     c.config.Email.FromName,
		FromAddress:  c.config.Email.FromAddress,
	}
}

// GetQueueConfig returns outbound email queue configuration
func (c *ConfigProviderAdapter) GetQueueConfig() ports.QueueConfig {
	return ports.QueueConfig{
		Type:        c.config.Queue.Type.String(),
		Key:         c.config.Queue.Key,
		MaxAttempts: c.config.Queue.MaxAttempts,
		Redis:       c.redisConfig(),
	}
}

// GetCacheConfig returns cache configuration
func (c *ConfigProviderAdapter) GetCacheConfig() ports.CacheConfig {
	return ports.CacheConfig{
		Type:  c.config.Cache.Type.String(),
		TTL:   time.Duration(c.config.Cache.TTLMinutes) * time.Minute,
		Redis: c.redisConfig(),
	}
}

// GetSchedulerConfig returns scheduler configuration
func (c *ConfigProviderAdapter) GetSchedulerConfig() ports.SchedulerConfig {
	return ports.SchedulerConfig{
		DailyCheckInterval: time.Duration(c.config.Scheduler.DailyCheckInterval) * time.Minute,
		EmailPollTimeout:   time.Duration(c.config.Scheduler.EmailPollTimeoutSeconds) * time.Second,
	}
}

func (c *ConfigProviderAdapter) redisConfig() ports.RedisConfig {
	r := c.config.Redis
	return ports.RedisConfig{
		Addr:         r.Addr,
		Password:     r.Password,
		DB:           r.DB,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
	}
}
