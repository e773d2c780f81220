package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"luna.app/pkg/errors"
)

const (
	maxRedisDB            = 15
	maxCacheTTLMinutes    = 1440
	maxCheckIntervalMins  = 10080
	maxPortNumber         = 65535
	maxCycleLengthDays    = 120
	maxPeriodLengthDays   = 30
	maxDedupeWindowSecs   = 86400
	maxIrregularityWindow = 24 * 31
)

// Config represents the application configuration structure
type Config struct {
	Server       ServerConfig       `split_words:"true"`
	Database     DatabaseConfig     `split_words:"true"`
	Cycle        CycleConfig        `split_words:"true"`
	Notification NotificationConfig `split_words:"true"`
	Push         PushConfig         `split_words:"true"`
	Email        EmailConfig        `split_words:"true"`
	Queue        QueueConfig        `split_words:"true"`
	Cache        CacheConfig        `split_words:"true"`
	Redis        RedisConfig        `split_words:"true"`
	Scheduler    SchedulerConfig    `split_words:"true"`
	Log          LogConfig          `split_words:"true"`
}

type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"luna"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// CycleConfig holds prediction defaults and irregularity thresholds, in days
type CycleConfig struct {
	DefaultCycleLength  int  `envconfig:"CYCLE_DEFAULT_LENGTH" default:"28"`
	DefaultPeriodLength int  `envconfig:"CYCLE_DEFAULT_PERIOD_LENGTH" default:"5"`
	OverlapBufferDays   int  `envconfig:"CYCLE_OVERLAP_BUFFER_DAYS" default:"5"`
	SpacingDays         int  `envconfig:"CYCLE_SPACING_DAYS" default:"10"`
	ShortCycleDays      int  `envconfig:"CYCLE_SHORT_DAYS" default:"21"`
	LongCycleDays       int  `envconfig:"CYCLE_LONG_DAYS" default:"35"`
	MissedPeriodDays    int  `envconfig:"CYCLE_MISSED_PERIOD_DAYS" default:"45"`
	HeavyFlowDays       int  `envconfig:"CYCLE_HEAVY_FLOW_DAYS" default:"7"`
	LightFlowDays       int  `envconfig:"CYCLE_LIGHT_FLOW_DAYS" default:"2"`
	FlowChecksEnabled   bool `envconfig:"CYCLE_FLOW_CHECKS_ENABLED" default:"true"`
}

type NotificationConfig struct {
	DedupeWindowSeconds       int  `envconfig:"NOTIFICATION_DEDUPE_WINDOW_SECONDS" default:"60"`
	ApproachingHorizonDays    int  `envconfig:"NOTIFICATION_APPROACHING_HORIZON_DAYS" default:"10"`
	LateThresholdDays         int  `envconfig:"NOTIFICATION_LATE_THRESHOLD_DAYS" default:"2"`
	MutationIrregularityHours int  `envconfig:"NOTIFICATION_MUTATION_IRREGULARITY_HOURS" default:"24"`
	DailyIrregularityHours    int  `envconfig:"NOTIFICATION_DAILY_IRREGULARITY_HOURS" default:"168"`
	IrregularityEmailEnabled  bool `envconfig:"NOTIFICATION_IRREGULARITY_EMAIL_ENABLED" default:"true"`
}

type PushConfig struct {
	Endpoint        string `envconfig:"PUSH_FCM_ENDPOINT"`
	CredentialsFile string `envconfig:"PUSH_FCM_CREDENTIALS_FILE"`
	TimeoutSeconds  int    `envconfig:"PUSH_TIMEOUT_SECONDS" default:"10"`
}

type EmailConfig struct {
	SMTPHost     string `envconfig:"EMAIL_SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"EMAIL_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"EMAIL_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"EMAIL_SMTP_PASSWORD"`
	FromName     string `envconfig:"EMAIL_FROM_NAME" default:"Luna"`
	FromAddress  string `envconfig:"EMAIL_FROM_ADDRESS" default:"no-reply@luna.app"`
}

// BackendType selects an in-process or Redis backed implementation
type BackendType int

const (
	BackendTypeUnknown BackendType = iota
	BackendTypeMemory
	BackendTypeRedis
)

// String returns the string representation of the backend type
func (b BackendType) String() string {
	switch b {
	case BackendTypeMemory:
		return "memory"
	case BackendTypeRedis:
		return "redis"
	default:
		return "unknown"
	}
}

// IsValid checks if the backend type is valid
func (b BackendType) IsValid() bool {
	return b == BackendTypeMemory || b == BackendTypeRedis
}

// BackendTypeFromString converts string to BackendType enum
func BackendTypeFromString(s string) BackendType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "memory":
		return BackendTypeMemory
	case "redis":
		return BackendTypeRedis
	default:
		return BackendTypeUnknown
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for envconfig
func (b *BackendType) UnmarshalText(text []byte) error {
	*b = BackendTypeFromString(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler for envconfig
func (b BackendType) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

type QueueConfig struct {
	Type        BackendType `envconfig:"QUEUE_TYPE" default:"memory"`
	Key         string      `envconfig:"QUEUE_KEY" default:"luna:email_jobs"`
	MaxAttempts int         `envconfig:"QUEUE_MAX_ATTEMPTS" default:"3"`
}

type CacheConfig struct {
	Type       BackendType `envconfig:"CACHE_TYPE" default:"memory"`
	TTLMinutes int         `envconfig:"CACHE_TTL_MINUTES" default:"10"`
}

type RedisConfig struct {
	Addr         string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password     string `envconfig:"REDIS_PASSWORD" default:""`
	DB           int    `envconfig:"REDIS_DB" default:"0"`
	DialTimeout  int    `envconfig:"REDIS_DIAL_TIMEOUT" default:"5"`
	ReadTimeout  int    `envconfig:"REDIS_READ_TIMEOUT" default:"3"`
	WriteTimeout int    `envconfig:"REDIS_WRITE_TIMEOUT" default:"3"`
}

type SchedulerConfig struct {
	DailyCheckInterval      int `envconfig:"SCHEDULER_DAILY_CHECK_INTERVAL" default:"1440"`
	EmailPollTimeoutSeconds int `envconfig:"SCHEDULER_EMAIL_POLL_TIMEOUT_SECONDS" default:"5"`
}

type LogConfig struct {
	Level    string `envconfig:"LOG_LEVEL" default:"info"`
	ToFile   bool   `envconfig:"LOG_TO_FILE" default:"false"`
	FilePath string `envconfig:"LOG_FILE_PATH" default:"logs/luna.log"`
}

func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Cycle.Validate(); err != nil {
		return err
	}
	if err := c.Notification.Validate(); err != nil {
		return err
	}
	if err := c.Push.Validate(); err != nil {
		return err
	}
	if err := c.Email.Validate(); err != nil {
		return err
	}
	if err := c.Queue.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if c.Queue.Type == BackendTypeRedis || c.Cache.Type == BackendTypeRedis {
		if err := c.Redis.Validate(); err != nil {
			return err
		}
	}
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > maxPortNumber {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > maxPortNumber {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	return d.ValidateSSLMode()
}

func (d *DatabaseConfig) ValidateSSLMode() error {
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	for _, mode := range validSSLModes {
		if d.SSLMode == mode {
			return nil
		}
	}
	return errors.NewConfigurationError(
		fmt.Sprintf("DB_SSL_MODE must be one of: %s", strings.Join(validSSLModes, ", ")), nil)
}

func (c *CycleConfig) Validate() error {
	if c.DefaultCycleLength < 1 || c.DefaultCycleLength > maxCycleLengthDays {
		return errors.NewConfigurationError("CYCLE_DEFAULT_LENGTH must be between 1 and 120 days", nil)
	}
	if c.DefaultPeriodLength < 1 || c.DefaultPeriodLength > maxPeriodLengthDays {
		return errors.NewConfigurationError("CYCLE_DEFAULT_PERIOD_LENGTH must be between 1 and 30 days", nil)
	}
	if c.OverlapBufferDays < 0 {
		return errors.NewConfigurationError("CYCLE_OVERLAP_BUFFER_DAYS cannot be negative", nil)
	}
	if c.SpacingDays < 0 {
		return errors.NewConfigurationError("CYCLE_SPACING_DAYS cannot be negative", nil)
	}
	if c.ShortCycleDays < 1 || c.ShortCycleDays >= c.LongCycleDays {
		return errors.NewConfigurationError("CYCLE_SHORT_DAYS must be positive and below CYCLE_LONG_DAYS", nil)
	}
	if c.MissedPeriodDays <= c.LongCycleDays {
		return errors.NewConfigurationError("CYCLE_MISSED_PERIOD_DAYS must exceed CYCLE_LONG_DAYS", nil)
	}
	if c.LightFlowDays < 0 || c.LightFlowDays >= c.HeavyFlowDays {
		return errors.NewConfigurationError("CYCLE_LIGHT_FLOW_DAYS must be non-negative and below CYCLE_HEAVY_FLOW_DAYS", nil)
	}
	return nil
}

func (n *NotificationConfig) Validate() error {
	if n.DedupeWindowSeconds < 0 || n.DedupeWindowSeconds > maxDedupeWindowSecs {
		return errors.NewConfigurationError("NOTIFICATION_DEDUPE_WINDOW_SECONDS must be between 0 and 86400", nil)
	}
	if n.ApproachingHorizonDays < 1 {
		return errors.NewConfigurationError("NOTIFICATION_APPROACHING_HORIZON_DAYS must be at least 1 day", nil)
	}
	if n.LateThresholdDays < 1 {
		return errors.NewConfigurationError("NOTIFICATION_LATE_THRESHOLD_DAYS must be at least 1 day", nil)
	}
	if n.MutationIrregularityHours < 1 || n.MutationIrregularityHours > maxIrregularityWindow {
		return errors.NewConfigurationError("NOTIFICATION_MUTATION_IRREGULARITY_HOURS must be between 1 and 744", nil)
	}
	if n.DailyIrregularityHours < 1 || n.DailyIrregularityHours > maxIrregularityWindow {
		return errors.NewConfigurationError("NOTIFICATION_DAILY_IRREGULARITY_HOURS must be between 1 and 744", nil)
	}
	return nil
}

func (p *PushConfig) Validate() error {
	if p.Endpoint != "" && !strings.HasPrefix(p.Endpoint, "http://") && !strings.HasPrefix(p.Endpoint, "https://") {
		return errors.NewConfigurationError("PUSH_FCM_ENDPOINT must start with http:// or https://", nil)
	}
	if p.Endpoint != "" && p.CredentialsFile == "" {
		return errors.NewConfigurationError("PUSH_FCM_CREDENTIALS_FILE is required when PUSH_FCM_ENDPOINT is set", nil)
	}
	if p.TimeoutSeconds < 1 {
		return errors.NewConfigurationError("PUSH_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	return nil
}

func (e *EmailConfig) Validate() error {
	if e.SMTPHost == "" {
		return errors.NewConfigurationError("EMAIL_SMTP_HOST cannot be empty", nil)
	}
	if e.SMTPPort < 1 || e.SMTPPort > maxPortNumber {
		return errors.NewConfigurationError("EMAIL_SMTP_PORT must be between 1 and 65535", nil)
	}
	if (e.SMTPUsername == "") != (e.SMTPPassword == "") {
		return errors.NewConfigurationError("EMAIL_SMTP_USERNAME and EMAIL_SMTP_PASSWORD must both be provided or both be empty", nil)
	}
	if e.FromName == "" {
		return errors.NewConfigurationError("EMAIL_FROM_NAME cannot be empty", nil)
	}
	if e.FromAddress == "" {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS cannot be empty", nil)
	}
	if !strings.Contains(e.FromAddress, "@") {
		return errors.NewConfigurationError("EMAIL_FROM_ADDRESS must be a valid email address", nil)
	}
	return nil
}

func (q *QueueConfig) Validate() error {
	if !q.Type.IsValid() {
		return errors.NewConfigurationError("QUEUE_TYPE must be one of: memory, redis", nil)
	}
	if q.Type == BackendTypeRedis && q.Key == "" {
		return errors.NewConfigurationError("QUEUE_KEY cannot be empty when using the Redis queue", nil)
	}
	if q.MaxAttempts < 1 {
		return errors.NewConfigurationError("QUEUE_MAX_ATTEMPTS must be at least 1", nil)
	}
	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Type.IsValid() {
		return errors.NewConfigurationError("CACHE_TYPE must be one of: memory, redis", nil)
	}
	if c.TTLMinutes < 1 || c.TTLMinutes > maxCacheTTLMinutes {
		return errors.NewConfigurationError("CACHE_TTL_MINUTES must be between 1 and 1440 minutes", nil)
	}
	return nil
}

func (r *RedisConfig) Validate() error {
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when a Redis backend is selected", nil)
	}
	if r.DB < 0 || r.DB > maxRedisDB {
		return errors.NewConfigurationError("REDIS_DB must be between 0 and 15", nil)
	}
	if r.DialTimeout < 1 {
		return errors.NewConfigurationError("REDIS_DIAL_TIMEOUT must be at least 1 second", nil)
	}
	if r.ReadTimeout < 1 {
		return errors.NewConfigurationError("REDIS_READ_TIMEOUT must be at least 1 second", nil)
	}
	if r.WriteTimeout < 1 {
		return errors.NewConfigurationError("REDIS_WRITE_TIMEOUT must be at least 1 second", nil)
	}
	return nil
}

func (s *SchedulerConfig) Validate() error {
	if s.DailyCheckInterval < 1 {
		return errors.NewConfigurationError("SCHEDULER_DAILY_CHECK_INTERVAL must be at least 1 minute", nil)
	}
	if s.DailyCheckInterval > maxCheckIntervalMins {
		return errors.NewConfigurationError("SCHEDULER_DAILY_CHECK_INTERVAL cannot exceed 10080 minutes (7 days)", nil)
	}
	if s.EmailPollTimeoutSeconds < 1 {
		return errors.NewConfigurationError("SCHEDULER_EMAIL_POLL_TIMEOUT_SECONDS must be at least 1 second", nil)
	}
	return nil
}

func (l *LogConfig) Validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewConfigurationError("LOG_LEVEL must be one of: debug, info, warn, error", nil)
	}
	if l.ToFile && l.FilePath == "" {
		return errors.NewConfigurationError("LOG_FILE_PATH cannot be empty when LOG_TO_FILE is true", nil)
	}
	return nil
}
