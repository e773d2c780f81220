package ports

import (
	"context"
	"time"
)

// EmailParams represents parameters for sending emails
type EmailParams struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

// EmailProvider defines the contract for email sending
type EmailProvider interface {
	SendEmail(ctx context.Context, params EmailParams) error
}

// EmailJob is a queued outbound email
type EmailJob struct {
	ID         string      `json:"id"`
	Params     EmailParams `json:"params"`
	Attempts   int         `json:"attempts"`
	EnqueuedAt time.Time   `json:"enqueued_at"`
}

// EmailQueue defines the contract for the outbound email job queue
type EmailQueue interface {
	Enqueue(ctx context.Context, job EmailJob) error
	// Dequeue blocks up to timeout and returns a NotFound error when nothing arrived.
	Dequeue(ctx context.Context, timeout time.Duration) (*EmailJob, error)
	Len(ctx context.Context) (int64, error)
}
