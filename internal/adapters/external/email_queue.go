package external

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// RedisEmailQueue is a FIFO list: producers LPUSH, the worker BRPOPs
type RedisEmailQueue struct {
	client *redis.Client
	key    string
}

// NewRedisEmailQueue connects to Redis and returns a queue stored under key
func NewRedisEmailQueue(cfg ports.RedisConfig, key string) (*RedisEmailQueue, error) {
	if key == "" {
		return nil, errors.NewConfigurationError("queue key cannot be empty", nil)
	}

	client, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &RedisEmailQueue{client: client, key: key}, nil
}

func (q *RedisEmailQueue) Enqueue(ctx context.Context, job ports.EmailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return errors.NewQueueError("failed to encode email job", err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return errors.NewQueueError("failed to enqueue email job", err)
	}
	return nil
}

func (q *RedisEmailQueue) Dequeue(ctx context.Context, timeout time.Duration) (*ports.EmailJob, error) {
	result, err := q.client.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.NewNotFoundError("email queue is empty")
		}
		return nil, errors.NewQueueError("failed to dequeue email job", err)
	}

	// BRPOP replies with [key, value]
	if len(result) != 2 {
		return nil, errors.NewQueueError(fmt.Sprintf("unexpected BRPOP reply of %d elements", len(result)), nil)
	}

	var job ports.EmailJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, errors.NewQueueError("failed to decode email job", err)
	}
	return &job, nil
}

func (q *RedisEmailQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.client.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, errors.NewQueueError("failed to read queue length", err)
	}
	return n, nil
}

func (q *RedisEmailQueue) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return errors.NewQueueError("Redis ping failed", err)
	}
	return nil
}

func (q *RedisEmailQueue) Close() error {
	return q.client.Close()
}

// MemoryEmailQueue is a bounded in-process queue
type MemoryEmailQueue struct {
	jobs chan ports.EmailJob
}

func NewMemoryEmailQueue(capacity int) *MemoryEmailQueue {
	if capacity <= 0 {
		capacity = 100
	}
	return &MemoryEmailQueue{jobs: make(chan ports.EmailJob, capacity)}
}

func (q *MemoryEmailQueue) Enqueue(ctx context.Context, job ports.EmailJob) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return errors.NewQueueError("enqueue cancelled", ctx.Err())
	default:
		return errors.NewQueueError("email queue is full", nil)
	}
}

func (q *MemoryEmailQueue) Dequeue(ctx context.Context, timeout time.Duration) (*ports.EmailJob, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, errors.NewNotFoundError("email queue is empty")
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryEmailQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.jobs)), nil
}

// NewEmailQueue builds the queue backend selected by cfg.Type
func NewEmailQueue(cfg ports.QueueConfig) (ports.EmailQueue, error) {
	switch cfg.Type {
	case BackendMemory:
		return NewMemoryEmailQueue(0), nil
	case BackendRedis:
		queue, err := NewRedisEmailQueue(cfg.Redis, cfg.Key)
		if err != nil {
			return nil, err
		}
		return queue, nil
	default:
		return nil, errors.NewConfigurationError(fmt.Sprintf("unsupported queue type: %q", cfg.Type), nil)
	}
}
