package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

func newJob(id string) ports.EmailJob {
	return ports.EmailJob{
		ID:         id,
		Params:     ports.EmailParams{To: "a@example.com", Subject: "s-" + id, Body: "b", IsHTML: true},
		EnqueuedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestRedisEmailQueue_FIFO(t *testing.T) {
	mockRedis, cfg := setupMockRedis(t)
	queue, err := NewRedisEmailQueue(cfg, "email:jobs")
	require.NoError(t, err)
	defer queue.Close()
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, newJob("1")))
	require.NoError(t, queue.Enqueue(ctx, newJob("2")))
	assert.True(t, mockRedis.Exists("email:jobs"))

	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	first, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1", first.ID)
	assert.True(t, first.Params.IsHTML)
	assert.True(t, first.EnqueuedAt.Equal(newJob("1").EnqueuedAt))

	second, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "2", second.ID)

	require.NoError(t, queue.Ping(ctx))
}

func TestRedisEmailQueue_CorruptPayload(t *testing.T) {
	mockRedis, cfg := setupMockRedis(t)
	queue, err := NewRedisEmailQueue(cfg, "email:jobs")
	require.NoError(t, err)
	defer queue.Close()

	_, err = mockRedis.Lpush("email:jobs", "not-json")
	require.NoError(t, err)

	_, err = queue.Dequeue(context.Background(), time.Second)
	assert.Equal(t, errors.ErrorTypeQueue, errors.TypeOf(err))
}

func TestNewRedisEmailQueue_EmptyKey(t *testing.T) {
	_, cfg := setupMockRedis(t)
	_, err := NewRedisEmailQueue(cfg, "")
	assert.True(t, errors.IsConfigurationError(err))
}

func TestMemoryEmailQueue(t *testing.T) {
	queue := NewMemoryEmailQueue(2)
	ctx := context.Background()

	_, err := queue.Dequeue(ctx, 10*time.Millisecond)
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, queue.Enqueue(ctx, newJob("1")))
	require.NoError(t, queue.Enqueue(ctx, newJob("2")))
	err = queue.Enqueue(ctx, newJob("3"))
	assert.Equal(t, errors.ErrorTypeQueue, errors.TypeOf(err))

	n, err := queue.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	job, err := queue.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "1", job.ID)
}

func TestMemoryEmailQueue_Cancelled(t *testing.T) {
	queue := NewMemoryEmailQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := queue.Dequeue(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEmailQueue(t *testing.T) {
	_, cfg := setupMockRedis(t)

	queue, err := NewEmailQueue(ports.QueueConfig{Type: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryEmailQueue{}, queue)

	queue, err = NewEmailQueue(ports.QueueConfig{Type: BackendRedis, Key: "email:jobs", Redis: cfg})
	require.NoError(t, err)
	assert.IsType(t, &RedisEmailQueue{}, queue)

	_, err = NewEmailQueue(ports.QueueConfig{Type: "kafka"})
	assert.True(t, errors.IsConfigurationError(err))
}
