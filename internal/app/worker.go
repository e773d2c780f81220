package app

import (
	"context"
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

const (
	emailStatusSent    = "sent"
	emailStatusRetried = "retried"
	emailStatusFailed  = "failed"
)

// EmailWorker drains the outbound email queue through the email provider.
// A failed send is requeued until MaxAttempts is reached.
type EmailWorker struct {
	queue       ports.EmailQueue
	provider    ports.EmailProvider
	maxAttempts int
	pollTimeout time.Duration
	logger      ports.Logger
	metrics     ports.MetricsCollector
}

type EmailWorkerConfig struct {
	Queue       ports.EmailQueue
	Provider    ports.EmailProvider
	MaxAttempts int
	PollTimeout time.Duration
	Logger      ports.Logger
	Metrics     ports.MetricsCollector
}

func NewEmailWorker(cfg EmailWorkerConfig) (*EmailWorker, error) {
	if cfg.Queue == nil {
		return nil, errors.NewValidationError("email queue is required")
	}
	if cfg.Provider == nil {
		return nil, errors.NewValidationError("email provider is required")
	}
	if cfg.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if cfg.Metrics == nil {
		return nil, errors.NewValidationError("metrics collector is required")
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 5 * time.Second
	}

	return &EmailWorker{
		queue:       cfg.Queue,
		provider:    cfg.Provider,
		maxAttempts: cfg.MaxAttempts,
		pollTimeout: cfg.PollTimeout,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}, nil
}

// Run processes jobs until ctx is cancelled
func (w *EmailWorker) Run(ctx context.Context) {
	w.logger.Info("Email worker started")
	for {
		if ctx.Err() != nil {
			w.logger.Info("Email worker stopped")
			return
		}

		if _, err := w.ProcessNext(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("Email queue poll failed", ports.F("error", err))
			// back off so a broken queue does not spin
			select {
			case <-ctx.Done():
			case <-time.After(w.pollTimeout):
			}
		}
	}
}

// ProcessNext handles at most one job. It reports whether a job was taken.
func (w *EmailWorker) ProcessNext(ctx context.Context) (bool, error) {
	job, err := w.queue.Dequeue(ctx, w.pollTimeout)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return false, nil
		}
		return false, err
	}

	job.Attempts++
	if err := w.provider.SendEmail(ctx, job.Params); err != nil {
		w.handleFailure(ctx, job, err)
		return true, nil
	}

	w.metrics.RecordEmailJob(ctx, emailStatusSent)
	w.logger.Debug("Email job sent", ports.F("job_id", job.ID), ports.F("attempts", job.Attempts))
	return true, nil
}

func (w *EmailWorker) handleFailure(ctx context.Context, job *ports.EmailJob, sendErr error) {
	if job.Attempts >= w.maxAttempts {
		w.metrics.RecordEmailJob(ctx, emailStatusFailed)
		w.logger.Error("Email job dropped after final attempt",
			ports.F("job_id", job.ID),
			ports.F("attempts", job.Attempts),
			ports.F("error", sendErr))
		return
	}

	if err := w.queue.Enqueue(ctx, *job); err != nil {
		w.metrics.RecordEmailJob(ctx, emailStatusFailed)
		w.logger.Error("Failed to requeue email job",
			ports.F("job_id", job.ID),
			ports.F("error", err),
			ports.F("send_error", sendErr))
		return
	}

	w.metrics.RecordEmailJob(ctx, emailStatusRetried)
	w.logger.Warn("Email job requeued",
		ports.F("job_id", job.ID),
		ports.F("attempts", job.Attempts),
		ports.F("error", sendErr))
}
