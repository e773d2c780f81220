package app

import (
	"context"
	"time"

	"luna.app/internal/core/notification"
	"luna.app/internal/ports"
)

// DailyChecker runs the notification check for every reachable user
type DailyChecker interface {
	DailyCheckAll(ctx context.Context) (notification.DailySummary, error)
}

// Scheduler triggers the daily check on a fixed interval
type Scheduler struct {
	checker  DailyChecker
	interval time.Duration
	logger   ports.Logger
}

func NewScheduler(checker DailyChecker, interval time.Duration, logger ports.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{checker: checker, interval: interval, logger: logger}
}

// Run blocks until ctx is cancelled
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Starting notification scheduler", ports.F("interval", s.interval.String()))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	summary, err := s.checker.DailyCheckAll(ctx)
	if err != nil {
		s.logger.Error("Daily check failed", ports.F("error", err))
		return
	}
	s.logger.Info("Daily check completed",
		ports.F("users", summary.Users),
		ports.F("sent", summary.Sent),
		ports.F("failed", summary.Failed))
}
