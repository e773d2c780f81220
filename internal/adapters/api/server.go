// Package api provides the HTTP adapter. Handlers translate requests into
// use case calls and map application errors onto status codes.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"luna.app/internal/core/cycle"
	"luna.app/internal/core/irregularity"
	"luna.app/internal/core/notification"
	"luna.app/internal/core/periodday"
	"luna.app/internal/core/user"
	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port int
}

// HTTPServerAdapter implements HTTP server using Gin framework
type HTTPServerAdapter struct {
	router              *gin.Engine
	server              *http.Server
	config              ServerConfig
	userUseCase         UserUseCase
	cycleUseCase        CycleUseCase
	periodDayUseCase    PeriodDayUseCase
	irregularityUseCase IrregularityUseCase
	notificationUseCase NotificationUseCase
	healthChecker       ports.SystemHealthChecker
	gatherer            prometheus.Gatherer
}

// Use case interfaces that the HTTP adapter depends on
type UserUseCase interface {
	Register(ctx context.Context, params user.RegisterParams) (*user.User, error)
	Get(ctx context.Context, id uint) (*user.User, error)
	UpdateSettings(ctx context.Context, params user.SettingsParams) (*user.User, error)
	Delete(ctx context.Context, id uint) error
}

type CycleUseCase interface {
	Create(ctx context.Context, params cycle.CreateParams) (*cycle.Cycle, error)
	Update(ctx context.Context, params cycle.UpdateParams) (*cycle.Cycle, error)
	Get(ctx context.Context, userID, id uint) (*cycle.Cycle, error)
	List(ctx context.Context, params cycle.ListParams) (*cycle.ListResult, error)
	Delete(ctx context.Context, userID, id uint) error
}

type PeriodDayUseCase interface {
	Log(ctx context.Context, params periodday.LogParams) (*periodday.PeriodDay, error)
	List(ctx context.Context, userID uint, cycleID *uint) ([]*periodday.PeriodDay, error)
	Get(ctx context.Context, userID, id uint) (*periodday.PeriodDay, error)
	Update(ctx context.Context, params periodday.UpdateParams) (*periodday.PeriodDay, error)
	Delete(ctx context.Context, userID, id uint) error
}

type IrregularityUseCase interface {
	List(ctx context.Context, userID uint, page, limit int) (*irregularity.ListResult, error)
	Get(ctx context.Context, userID, id uint) (*irregularity.Irregularity, error)
	Delete(ctx context.Context, userID, id uint) error
}

type NotificationUseCase interface {
	Evaluate(ctx context.Context, userID uint, trigger notification.Trigger) notification.Report
	DailyCheckAll(ctx context.Context) (notification.DailySummary, error)
	List(ctx context.Context, userID uint, page, limit int) (*notification.ListResult, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

// ServerOptions represents options for creating the HTTP server
type ServerOptions struct {
	Config              ServerConfig
	UserUseCase         UserUseCase
	CycleUseCase        CycleUseCase
	PeriodDayUseCase    PeriodDayUseCase
	IrregularityUseCase IrregularityUseCase
	NotificationUseCase NotificationUseCase
	HealthChecker       ports.SystemHealthChecker
	// Gatherer backs /metrics; nil means the default registry
	Gatherer prometheus.Gatherer
}

// NewHTTPServerAdapter creates a new HTTP server adapter
func NewHTTPServerAdapter(opts ServerOptions) (*HTTPServerAdapter, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	if err := registerValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	server := &HTTPServerAdapter{
		router:              router,
		config:              opts.Config,
		userUseCase:         opts.UserUseCase,
		cycleUseCase:        opts.CycleUseCase,
		periodDayUseCase:    opts.PeriodDayUseCase,
		irregularityUseCase: opts.IrregularityUseCase,
		notificationUseCase: opts.NotificationUseCase,
		healthChecker:       opts.HealthChecker,
		gatherer:            gatherer,
	}

	server.setupRoutes()
	return server, nil
}

// Validate checks if all required dependencies are provided
func (opts *ServerOptions) Validate() error {
	if opts.UserUseCase == nil {
		return errors.NewValidationError("user use case is required")
	}
	if opts.CycleUseCase == nil {
		return errors.NewValidationError("cycle use case is required")
	}
	if opts.PeriodDayUseCase == nil {
		return errors.NewValidationError("period day use case is required")
	}
	if opts.IrregularityUseCase == nil {
		return errors.NewValidationError("irregularity use case is required")
	}
	if opts.NotificationUseCase == nil {
		return errors.NewValidationError("notification use case is required")
	}
	if opts.HealthChecker == nil {
		return errors.NewValidationError("health checker is required")
	}
	return nil
}

// setupRoutes configures all HTTP routes
func (s *HTTPServerAdapter) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.POST("/users", s.registerUser)
		api.POST("/notifications/daily-check", s.runDailyCheck)

		u := api.Group("/users/:user_id")
		{
			u.GET("", s.getUser)
			u.DELETE("", s.deleteUser)
			u.PATCH("/settings", s.updateSettings)

			u.POST("/cycles", s.createCycle)
			u.GET("/cycles", s.listCycles)
			u.GET("/cycles/:cycle_id", s.getCycle)
			u.PUT("/cycles/:cycle_id", s.updateCycle)
			u.DELETE("/cycles/:cycle_id", s.deleteCycle)

			u.POST("/period-days", s.logPeriodDay)
			u.GET("/period-days", s.listPeriodDays)
			u.GET("/period-days/:period_day_id", s.getPeriodDay)
			u.PATCH("/period-days/:period_day_id", s.updatePeriodDay)
			u.DELETE("/period-days/:period_day_id", s.deletePeriodDay)

			u.GET("/irregularities", s.listIrregularities)
			u.GET("/irregularities/:irregularity_id", s.getIrregularity)
			u.DELETE("/irregularities/:irregularity_id", s.deleteIrregularity)

			u.GET("/notifications", s.listNotifications)
			u.POST("/notifications/read", s.markNotificationsRead)
			u.POST("/notifications/check", s.checkNotifications)
		}
	}

	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// Start serves HTTP until Shutdown is called
func (s *HTTPServerAdapter) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("Starting HTTP server", "port", s.config.Port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *HTTPServerAdapter) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the router for testing purposes
func (s *HTTPServerAdapter) GetRouter() *gin.Engine {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
