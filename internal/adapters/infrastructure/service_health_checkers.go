package infrastructure

import (
	"context"
	"fmt"

	"luna.app/internal/ports"
)

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// EmailHealthChecker reports the SMTP configuration in use
type EmailHealthChecker struct {
	config ports.EmailConfig
}

// NewEmailHealthChecker creates a new email health checker
func NewEmailHealthChecker(config ports.EmailConfig) *EmailHealthChecker {
	return &EmailHealthChecker{config: config}
}

// Check verifies email service configuration
func (e *EmailHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "smtp",
		Status:    statusHealthy,
		Details: map[string]interface{}{
			"host": e.config.SMTPHost,
			"port": fmt.Sprintf("%d", e.config.SMTPPort),
		},
	}
	if e.config.SMTPHost == "" {
		status.Status = statusUnhealthy
		status.Error = "SMTP host is not configured"
	}
	return status
}

// QueueHealthChecker reports the outbound email backlog
type QueueHealthChecker struct {
	queue ports.EmailQueue
}

func NewQueueHealthChecker(queue ports.EmailQueue) *QueueHealthChecker {
	return &QueueHealthChecker{queue: queue}
}

func (q *QueueHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "queue",
		Details:   make(map[string]interface{}),
	}

	if q.queue == nil {
		status.Status = statusUnhealthy
		status.Error = "email queue is not available"
		return status
	}

	backlog, err := q.queue.Len(ctx)
	if err != nil {
		status.Status = statusUnhealthy
		status.Error = err.Error()
		return status
	}

	status.Status = statusHealthy
	status.Details["pending_jobs"] = backlog
	return status
}

// PushConfigurationChecker is satisfied by push gateways that can report their setup
type PushConfigurationChecker interface {
	Configured() bool
}

// PushHealthChecker reports whether push delivery is configured
type PushHealthChecker struct {
	gateway PushConfigurationChecker
}

func NewPushHealthChecker(gateway PushConfigurationChecker) *PushHealthChecker {
	return &PushHealthChecker{gateway: gateway}
}

func (p *PushHealthChecker) Check(ctx context.Context) ports.HealthStatus {
	status := ports.HealthStatus{
		Component: "push",
		Status:    statusHealthy,
		Details:   map[string]interface{}{"configured": true},
	}

	if p.gateway == nil || !p.gateway.Configured() {
		// notifications still evaluate, deliveries fail
		status.Status = statusDegraded
		status.Details["configured"] = false
	}
	return status
}
