package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

func TestNotificationRepository_FindRecent(t *testing.T) {
	repo := NewNotificationRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &ports.NotificationData{
		UserID:    1,
		Title:     "Cycle update: Luteal phase",
		Body:      "Day 3 of your luteal phase.",
		DeviceID:  "device-1",
		CreatedAt: now.Add(-30 * time.Second),
	}))

	found, err := repo.FindRecent(ctx, 1, "Luteal phase", now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "device-1", found.DeviceID)

	_, err = repo.FindRecent(ctx, 1, "Luteal phase", now.Add(-10*time.Second))
	assert.True(t, errors.IsNotFoundError(err))

	_, err = repo.FindRecent(ctx, 2, "Luteal phase", now.Add(-time.Minute))
	assert.True(t, errors.IsNotFoundError(err))

	found, err = repo.FindRecentByBody(ctx, 1, "Day 3 of your", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Cycle update: Luteal phase", found.Title)
}

func TestNotificationRepository_ListAndMarkAllRead(t *testing.T) {
	repo := NewNotificationRepositoryAdapter(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &ports.NotificationData{
			UserID:    1,
			Title:     "Period approaching",
			Body:      "soon",
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, repo.Create(ctx, &ports.NotificationData{UserID: 2, Title: "other", Body: "x", CreatedAt: base}))

	rows, total, err := repo.ListByUser(ctx, 1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].CreatedAt.After(rows[1].CreatedAt))

	updated, err := repo.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	updated, err = repo.MarkAllRead(ctx, 1)
	require.NoError(t, err)
	assert.Zero(t, updated)

	rows, _, err = repo.ListByUser(ctx, 2, 0, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Read)
}
