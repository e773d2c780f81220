package ports

import (
	"context"
	"time"
)

// CycleConfig represents the cycle prediction and irregularity thresholds
type CycleConfig struct {
	DefaultCycleLength  int
	DefaultPeriodLength int
	OverlapBufferDays   int
	SpacingDays         int
	ShortCycleDays      int
	LongCycleDays       int
	MissedPeriodDays    int
	HeavyFlowDays       int
	LightFlowDays       int
	FlowChecksEnabled   bool
}

// NotificationConfig represents notification evaluation settings
type NotificationConfig struct {
	DedupeWindow               time.Duration
	ApproachingHorizonDays     int
	LateThresholdDays          int
	MutationIrregularityWindow time.Duration
	DailyIrregularityWindow    time.Duration
	IrregularityEmailEnabled   bool
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Port int
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// PushConfig represents the push gateway configuration
type PushConfig struct {
	Endpoint        string
	CredentialsFile string
	Timeout         time.Duration
}

// EmailConfig represents email configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromAddress  string
}

// QueueConfig represents outbound email queue configuration
type QueueConfig struct {
	Type        string
	Key         string
	MaxAttempts int
	Redis       RedisConfig
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	Type  string
	TTL   time.Duration
	Redis RedisConfig
}

// RedisConfig represents Redis configuration
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  int
	ReadTimeout  int
	WriteTimeout int
}

// SchedulerConfig represents scheduler configuration
type SchedulerConfig struct {
	DailyCheckInterval time.Duration
	EmailPollTimeout   time.Duration
}

// CycleConfigProvider exposes cycle rules to the core
type CycleConfigProvider interface {
	GetCycleConfig() CycleConfig
}

// NotificationConfigProvider exposes notification rules to the core
type NotificationConfigProvider interface {
	GetNotificationConfig() NotificationConfig
}

// ConfigProvider defines the contract for configuration management
type ConfigProvider interface {
	CycleConfigProvider
	NotificationConfigProvider
	GetServerConfig() ServerConfig
	GetDatabaseConfig() DatabaseConfig
	GetPushConfig() PushConfig
	GetEmailConfig() EmailConfig
	GetQueueConfig() QueueConfig
	GetCacheConfig() CacheConfig
	GetSchedulerConfig() SchedulerConfig
}

// Logger defines the contract for structured logging
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field represents a log field
type Field struct {
	Key   string
	Value interface{}
}

// F creates a log field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// MetricsCollector defines the contract for metrics collection
type MetricsCollector interface {
	RecordCacheHit(ctx context.Context)
	RecordCacheMiss(ctx context.Context)
	RecordCycleCreated(ctx context.Context)
	RecordAdmissionRejected(ctx context.Context, rule string)
	RecordIrregularity(ctx context.Context, irregularityType string)
	RecordNotification(ctx context.Context, kind string, sent bool)
	RecordEmailJob(ctx context.Context, status string)
}
