package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gin-gonic/gin"

	"luna.app/internal/adapters/api"
	"luna.app/internal/adapters/infrastructure"
	"luna.app/internal/config"
	"luna.app/internal/core/cycle"
	"luna.app/internal/core/irregularity"
	"luna.app/internal/core/notification"
	"luna.app/internal/core/periodday"
	"luna.app/internal/core/user"
	"luna.app/internal/ports"
)

type Application struct {
	config    *config.Config
	container *DependencyContainer

	// Use Cases
	userUseCase         *user.UseCase
	cycleUseCase        *cycle.UseCase
	periodDayUseCase    *periodday.UseCase
	irregularityUseCase *irregularity.UseCase
	evaluator           *notification.Evaluator

	// Adapters
	httpServer  *api.HTTPServerAdapter
	scheduler   *Scheduler
	emailWorker *EmailWorker

	// Infrastructure
	ports   *ports.ApplicationPorts
	cancel  context.CancelFunc
	workers sync.WaitGroup
}

// NewApplication loads configuration from the environment and connects to PostgreSQL
func NewApplication() (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	container, err := NewDependencyContainer(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}

	return NewApplicationWithDependencies(cfg, container)
}

// NewApplicationWithDependencies builds the application on top of prepared ports
func NewApplicationWithDependencies(cfg *config.Config, container *DependencyContainer) (*Application, error) {
	app := &Application{
		config:    cfg,
		container: container,
		ports:     container.ApplicationPorts(),
	}

	if err := app.initializeUseCases(); err != nil {
		return nil, fmt.Errorf("initialize use cases: %w", err)
	}

	if err := app.initializeAdapters(); err != nil {
		return nil, fmt.Errorf("initialize adapters: %w", err)
	}

	return app, nil
}

func (a *Application) initializeUseCases() error {
	slog.Info("Initializing use cases...")
	p := a.ports

	var err error
	a.userUseCase, err = user.NewUseCase(user.UseCaseDependencies{
		Repo:        p.UserRepository,
		Invalidator: p.UserInvalidator,
		Queue:       p.EmailQueue,
		Config:      p.ConfigProvider,
		Clock:       p.Clock,
		Logger:      p.Logger,
	})
	if err != nil {
		return fmt.Errorf("create user use case: %w", err)
	}

	a.irregularityUseCase, err = irregularity.NewUseCase(irregularity.UseCaseDependencies{
		Store:   p.Store,
		Users:   p.UserDirectory,
		Queue:   p.EmailQueue,
		Config:  p.ConfigProvider,
		Clock:   p.Clock,
		Logger:  p.Logger,
		Metrics: p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create irregularity use case: %w", err)
	}

	a.evaluator, err = notification.NewEvaluator(notification.EvaluatorDependencies{
		Store:    p.Store,
		Users:    p.UserDirectory,
		UserRepo: p.UserRepository,
		Push:     p.PushGateway,
		Detector: a.irregularityUseCase,
		Config:   p.ConfigProvider,
		Clock:    p.Clock,
		Logger:   p.Logger,
		Metrics:  p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create notification evaluator: %w", err)
	}

	a.cycleUseCase, err = cycle.NewUseCase(cycle.UseCaseDependencies{
		Store:    p.Store,
		Users:    p.UserDirectory,
		Detector: a.irregularityUseCase,
		Notifier: a.evaluator,
		Config:   p.ConfigProvider,
		Clock:    p.Clock,
		Logger:   p.Logger,
		Metrics:  p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create cycle use case: %w", err)
	}

	a.periodDayUseCase, err = periodday.NewUseCase(periodday.UseCaseDependencies{
		Store:  p.Store,
		Users:  p.UserDirectory,
		Clock:  p.Clock,
		Logger: p.Logger,
	})
	if err != nil {
		return fmt.Errorf("create period day use case: %w", err)
	}

	slog.Info("Use cases initialized successfully")
	return nil
}

func (a *Application) initializeAdapters() error {
	slog.Info("Initializing adapters...")
	p := a.ports

	healthChecker := infrastructure.NewSystemHealthChecker(infrastructure.SystemHealthCheckerConfig{
		DatabaseChecker: infrastructure.NewDatabaseHealthChecker(a.container.DB()),
		QueueChecker:    infrastructure.NewQueueHealthChecker(p.EmailQueue),
		PushChecker:     infrastructure.NewPushHealthChecker(a.container.PushGateway()),
		EmailChecker:    infrastructure.NewEmailHealthChecker(p.ConfigProvider.GetEmailConfig()),
	})

	var err error
	a.httpServer, err = api.NewHTTPServerAdapter(api.ServerOptions{
		Config:              api.ServerConfig{Port: a.config.Server.Port},
		UserUseCase:         a.userUseCase,
		CycleUseCase:        a.cycleUseCase,
		PeriodDayUseCase:    a.periodDayUseCase,
		IrregularityUseCase: a.irregularityUseCase,
		NotificationUseCase: a.evaluator,
		HealthChecker:       healthChecker,
		Gatherer:            a.container.Registry(),
	})
	if err != nil {
		return fmt.Errorf("create HTTP server: %w", err)
	}

	schedulerConfig := p.ConfigProvider.GetSchedulerConfig()
	queueConfig := p.ConfigProvider.GetQueueConfig()

	a.scheduler = NewScheduler(a.evaluator, schedulerConfig.DailyCheckInterval, p.Logger)

	a.emailWorker, err = NewEmailWorker(EmailWorkerConfig{
		Queue:       p.EmailQueue,
		Provider:    p.EmailProvider,
		MaxAttempts: queueConfig.MaxAttempts,
		PollTimeout: schedulerConfig.EmailPollTimeout,
		Logger:      p.Logger,
		Metrics:     p.Metrics,
	})
	if err != nil {
		return fmt.Errorf("create email worker: %w", err)
	}

	slog.Info("Adapters initialized successfully")
	return nil
}

// Start launches the background workers and blocks serving HTTP
func (a *Application) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.workers.Add(2)
	go func() {
		defer a.workers.Done()
		a.scheduler.Run(workerCtx)
	}()
	go func() {
		defer a.workers.Done()
		a.emailWorker.Run(workerCtx)
	}()

	slog.Info("Starting server", "port", a.config.Server.Port)
	return a.httpServer.Start(ctx)
}

func (a *Application) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down application...")

	if a.cancel != nil {
		a.cancel()
	}

	var shutdownErr error
	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		shutdownErr = err
	}

	done := make(chan struct{})
	go func() {
		a.workers.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		slog.Warn("Background workers did not stop in time")
	}

	if err := a.container.Close(); err != nil {
		slog.Error("Failed to release resources", "error", err)
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	slog.Info("Application shutdown completed")
	return shutdownErr
}

func (a *Application) Config() *config.Config {
	return a.config
}

func (a *Application) GetRouter() *gin.Engine {
	return a.httpServer.GetRouter()
}

func (a *Application) Ports() *ports.ApplicationPorts {
	return a.ports
}
