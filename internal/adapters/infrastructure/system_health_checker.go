package infrastructure

import (
	"context"

	"luna.app/internal/ports"
)

// SystemHealthChecker aggregates all health checks
type SystemHealthChecker struct {
	checkers map[string]ports.HealthChecker
}

// SystemHealthCheckerConfig holds the configuration for creating a system health checker
type SystemHealthCheckerConfig struct {
	DatabaseChecker ports.HealthChecker
	QueueChecker    ports.HealthChecker
	PushChecker     ports.HealthChecker
	EmailChecker    ports.HealthChecker
}

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(config SystemHealthCheckerConfig) *SystemHealthChecker {
	checkers := make(map[string]ports.HealthChecker)
	for name, checker := range map[string]ports.HealthChecker{
		"database": config.DatabaseChecker,
		"queue":    config.QueueChecker,
		"push":     config.PushChecker,
		"smtp":     config.EmailChecker,
	} {
		if checker != nil {
			checkers[name] = checker
		}
	}
	return &SystemHealthChecker{checkers: checkers}
}

// CheckAll performs health checks on all components
func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus, len(s.checkers))
	for name, checker := range s.checkers {
		results[name] = checker.Check(ctx)
	}
	return results
}

// Overall folds component statuses into one: any unhealthy wins, then degraded
func Overall(results map[string]ports.HealthStatus) string {
	overall := statusHealthy
	for _, r := range results {
		switch r.Status {
		case statusUnhealthy:
			return statusUnhealthy
		case statusDegraded:
			overall = statusDegraded
		}
	}
	return overall
}
