// Package testutil holds fixtures shared by use case and adapter tests.
package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"luna.app/internal/adapters/database"
	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// NewDB opens a migrated in-memory SQLite database
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Date parses a YYYY-MM-DD value as a UTC day
func Date(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	require.NoError(t, err)
	return d
}

// CreateUser stores a user and returns it with its ID assigned
func CreateUser(t *testing.T, repo ports.UserRepository, name, token string) *ports.UserData {
	t.Helper()
	u := &ports.UserData{
		Name:            name,
		Email:           fmt.Sprintf("%s@example.com", name),
		AvgCycleLength:  28,
		AvgPeriodLength: 5,
		FCMToken:        token,
	}
	require.NoError(t, repo.Save(context.Background(), u))
	return u
}

// Config is a static cycle and notification configuration
type Config struct {
	Cycle        ports.CycleConfig
	Notification ports.NotificationConfig
}

// DefaultConfig mirrors the service defaults
func DefaultConfig() *Config {
	return &Config{
		Cycle: ports.CycleConfig{
			DefaultCycleLength:  28,
			DefaultPeriodLength: 5,
			OverlapBufferDays:   5,
			SpacingDays:         10,
			ShortCycleDays:      21,
			LongCycleDays:       35,
			MissedPeriodDays:    45,
			HeavyFlowDays:       7,
			LightFlowDays:       2,
			FlowChecksEnabled:   true,
		},
		Notification: ports.NotificationConfig{
			DedupeWindow:               time.Minute,
			ApproachingHorizonDays:     10,
			LateThresholdDays:          2,
			MutationIrregularityWindow: 24 * time.Hour,
			DailyIrregularityWindow:    7 * 24 * time.Hour,
			IrregularityEmailEnabled:   true,
		},
	}
}

func (c *Config) GetCycleConfig() ports.CycleConfig               { return c.Cycle }
func (c *Config) GetNotificationConfig() ports.NotificationConfig { return c.Notification }

// Clock is a settable clock
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// LogEntry is one captured log line
type LogEntry struct {
	Level   string
	Message string
	Fields  []ports.Field
}

// Logger captures log lines in memory
type Logger struct {
	mu      sync.Mutex
	Entries []LogEntry
}

func (l *Logger) Debug(msg string, fields ...ports.Field) { l.add("debug", msg, fields) }
func (l *Logger) Info(msg string, fields ...ports.Field)  { l.add("info", msg, fields) }
func (l *Logger) Warn(msg string, fields ...ports.Field)  { l.add("warn", msg, fields) }
func (l *Logger) Error(msg string, fields ...ports.Field) { l.add("error", msg, fields) }

func (l *Logger) add(level, msg string, fields []ports.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, LogEntry{Level: level, Message: msg, Fields: fields})
}

// Has reports whether a line with the given level and message was logged
func (l *Logger) Has(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.Entries {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}

// Metrics counts recorded events by name
type Metrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func NewMetrics() *Metrics {
	return &Metrics{counts: make(map[string]int)}
}

func (m *Metrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
}

// Count returns how often key was recorded
func (m *Metrics) Count(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *Metrics) RecordCacheHit(ctx context.Context)     { m.inc("cache_hit") }
func (m *Metrics) RecordCacheMiss(ctx context.Context)    { m.inc("cache_miss") }
func (m *Metrics) RecordCycleCreated(ctx context.Context) { m.inc("cycle_created") }
func (m *Metrics) RecordAdmissionRejected(ctx context.Context, rule string) {
	m.inc("admission_rejected:" + rule)
}
func (m *Metrics) RecordIrregularity(ctx context.Context, irregularityType string) {
	m.inc("irregularity:" + irregularityType)
}
func (m *Metrics) RecordNotification(ctx context.Context, kind string, sent bool) {
	m.inc(fmt.Sprintf("notification:%s:%t", kind, sent))
}
func (m *Metrics) RecordEmailJob(ctx context.Context, status string) {
	m.inc("email_job:" + status)
}

// Users is a UserDirectory over a UserRepository without caching
type Users struct {
	Repo ports.UserRepository
}

func (u Users) Get(ctx context.Context, userID uint) (*ports.UserData, error) {
	return u.Repo.FindByID(ctx, userID)
}

// Queue is an in-memory EmailQueue
type Queue struct {
	mu   sync.Mutex
	Jobs []ports.EmailJob
	Err  error
}

func (q *Queue) Enqueue(ctx context.Context, job ports.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.Jobs = append(q.Jobs, job)
	return nil
}

func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*ports.EmailJob, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.Jobs) == 0 {
		return nil, errors.NewNotFoundError("email queue is empty")
	}
	job := q.Jobs[0]
	q.Jobs = q.Jobs[1:]
	return &job, nil
}

func (q *Queue) Len(ctx context.Context) (int64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return int64(len(q.Jobs)), nil
}

// MockPushGateway is a testify mock of the push gateway
type MockPushGateway struct {
	mock.Mock
}

func (m *MockPushGateway) Send(ctx context.Context, msg ports.PushMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
