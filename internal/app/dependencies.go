package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"luna.app/internal/adapters/database"
	"luna.app/internal/adapters/external"
	"luna.app/internal/adapters/infrastructure"
	"luna.app/internal/config"
	"luna.app/internal/ports"
	"luna.app/pkg/logger"
)

type DependencyContainer struct {
	config   *config.Config
	db       *gorm.DB
	registry *prometheus.Registry
	push     *external.FCMPushGatewayAdapter
	closers  []func() error
	ports    *ports.ApplicationPorts
}

// NewDependencyContainer connects to PostgreSQL and wires every port
func NewDependencyContainer(cfg *config.Config) (*DependencyContainer, error) {
	slog.Info("Initializing database connection...")

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDSN()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return NewDependencyContainerWithDB(cfg, db)
}

// NewDependencyContainerWithDB wires every port on top of an open database
func NewDependencyContainerWithDB(cfg *config.Config, db *gorm.DB) (*DependencyContainer, error) {
	container := &DependencyContainer{
		config:   cfg,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	slog.Info("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if err := container.initializePorts(); err != nil {
		_ = container.Close()
		return nil, fmt.Errorf("initialize ports: %w", err)
	}

	return container, nil
}

func (c *DependencyContainer) initializePorts() error {
	slog.Info("Initializing ports...")

	configProvider := infrastructure.NewConfigProviderAdapter(c.config)

	var log ports.Logger = infrastructure.NewSlogLoggerAdapter(logger.New(c.config.Log.Level).Logger)
	if c.config.Log.ToFile {
		fileLogger, err := infrastructure.NewFileLoggerAdapter(c.config.Log.FilePath)
		if err != nil {
			slog.Warn("Failed to create file logger, falling back to slog", "error", err)
		} else {
			log = infrastructure.NewTeeLogger(log, fileLogger)
			slog.Info("File logging enabled", "path", c.config.Log.FilePath)
		}
	}

	c.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewPrometheusMetricsCollector(c.registry)

	store := database.NewStoreAdapter(c.db)
	userRepo := database.NewUserRepositoryAdapter(c.db)

	cacheConfig := configProvider.GetCacheConfig()
	cache, err := external.NewCacheProviderFactory().CreateCacheProvider(cacheConfig)
	if err != nil {
		return fmt.Errorf("create cache provider: %w", err)
	}
	c.trackCloser(cache)
	slog.Info("Cache provider initialized", "type", cacheConfig.Type)

	directory, err := external.NewCachedUserDirectory(external.CachedUserDirectoryParams{
		Repo:    userRepo,
		Cache:   cache,
		TTL:     cacheConfig.TTL,
		Metrics: metrics,
		Logger:  log,
	})
	if err != nil {
		return fmt.Errorf("create user directory: %w", err)
	}

	queueConfig := configProvider.GetQueueConfig()
	queue, err := external.NewEmailQueue(queueConfig)
	if err != nil {
		return fmt.Errorf("create email queue: %w", err)
	}
	c.trackCloser(queue)
	slog.Info("Email queue initialized", "type", queueConfig.Type)

	c.push, err = external.NewFCMPushGatewayAdapter(context.Background(), configProvider.GetPushConfig())
	if err != nil {
		return fmt.Errorf("create push gateway: %w", err)
	}
	if !c.push.Configured() {
		slog.Warn("Push gateway is not configured; notifications will be reported as failed")
	}

	emailProvider := external.NewEmailProviderLoggingDecorator(
		external.NewSMTPEmailProviderAdapter(configProvider.GetEmailConfig()), log)

	c.ports = &ports.ApplicationPorts{
		Store:           store,
		UserRepository:  userRepo,
		UserDirectory:   directory,
		UserInvalidator: directory,
		PushGateway:     external.NewPushGatewayLoggingDecorator(c.push, log),
		EmailProvider:   emailProvider,
		EmailQueue:      queue,
		CacheProvider:   cache,
		ConfigProvider:  configProvider,
		Logger:          log,
		Metrics:         metrics,
		Clock:           infrastructure.SystemClock{},
	}

	slog.Info("Ports initialized successfully")
	return nil
}

func (c *DependencyContainer) trackCloser(v interface{}) {
	if closer, ok := v.(interface{ Close() error }); ok {
		c.closers = append(c.closers, closer.Close)
	}
}

// ApplicationPorts returns the wired ports
func (c *DependencyContainer) ApplicationPorts() *ports.ApplicationPorts {
	return c.ports
}

// DB returns the database handle
func (c *DependencyContainer) DB() *gorm.DB {
	return c.db
}

// Registry returns the Prometheus registry served on /metrics
func (c *DependencyContainer) Registry() *prometheus.Registry {
	return c.registry
}

// PushGateway returns the concrete push adapter for health reporting
func (c *DependencyContainer) PushGateway() *external.FCMPushGatewayAdapter {
	return c.push
}

// Close releases Redis clients and the database pool
func (c *DependencyContainer) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil

	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
