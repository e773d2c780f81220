package user

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"luna.app/internal/adapters/database"
	"luna.app/internal/testutil"
	"luna.app/pkg/errors"
)

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context, userID uint) error {
	return m.Called(ctx, userID).Error(0)
}

type fixture struct {
	uc          *UseCase
	queue       *testutil.Queue
	invalidator *mockInvalidator
	logger      *testutil.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		queue:       &testutil.Queue{},
		invalidator: &mockInvalidator{},
		logger:      &testutil.Logger{},
	}
	uc, err := NewUseCase(UseCaseDependencies{
		Repo:        database.NewUserRepositoryAdapter(testutil.NewDB(t)),
		Invalidator: f.invalidator,
		Queue:       f.queue,
		Config:      testutil.DefaultConfig(),
		Clock:       testutil.NewClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		Logger:      f.logger,
	})
	require.NoError(t, err)
	f.uc = uc
	return f
}

func TestRegister_AppliesDefaults(t *testing.T) {
	f := newFixture(t)

	u, err := f.uc.Register(context.Background(), RegisterParams{Name: "  Hana ", Email: "Hana@Example.com"})
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Equal(t, "Hana", u.Name)
	assert.Equal(t, "hana@example.com", u.Email)
	assert.Equal(t, 28, u.AvgCycleLength)
	assert.Equal(t, 5, u.AvgPeriodLength)
	assert.False(t, u.HasPushToken)

	require.Len(t, f.queue.Jobs, 1)
	assert.Equal(t, "Welcome to Luna", f.queue.Jobs[0].Params.Subject)
	assert.Equal(t, "hana@example.com", f.queue.Jobs[0].Params.To)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		params RegisterParams
	}{
		{"missing name", RegisterParams{Email: "a@example.com"}},
		{"bad email", RegisterParams{Name: "A", Email: "not-an-email"}},
		{"cycle too long", RegisterParams{Name: "A", Email: "a@example.com", AvgCycleLength: 120}},
		{"period too long", RegisterParams{Name: "A", Email: "a@example.com", AvgPeriodLength: 31}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Register(context.Background(), tt.params)
			assert.True(t, errors.IsValidationError(err))
		})
	}
	assert.Empty(t, f.queue.Jobs)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Register(ctx, RegisterParams{Name: "A", Email: "dup@example.com"})
	require.NoError(t, err)
	_, err = f.uc.Register(ctx, RegisterParams{Name: "B", Email: "DUP@example.com"})
	assert.True(t, errors.IsAlreadyExistsError(err))
}

func TestRegister_QueueFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.queue.Err = stderrors.New("queue full")

	_, err := f.uc.Register(context.Background(), RegisterParams{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	assert.True(t, f.logger.Has("error", "Failed to enqueue welcome email"))
}

func TestUpdateSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.uc.Register(ctx, RegisterParams{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	f.invalidator.On("Invalidate", mock.Anything, u.ID).Return(nil)

	cycleLength := 31
	token := " device-token "
	updated, err := f.uc.UpdateSettings(ctx, SettingsParams{UserID: u.ID, AvgCycleLength: &cycleLength, FCMToken: &token})
	require.NoError(t, err)

	assert.Equal(t, 31, updated.AvgCycleLength)
	assert.Equal(t, 5, updated.AvgPeriodLength)
	assert.True(t, updated.HasPushToken)
	f.invalidator.AssertExpectations(t)

	got, err := f.uc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 31, got.AvgCycleLength)
}

func TestUpdateSettings_InvalidLength(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.uc.Register(ctx, RegisterParams{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)

	zero := 0
	_, err = f.uc.UpdateSettings(ctx, SettingsParams{UserID: u.ID, AvgPeriodLength: &zero})
	assert.True(t, errors.IsValidationError(err))
	f.invalidator.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
}

func TestUpdateSettings_InvalidationFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.uc.Register(ctx, RegisterParams{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	f.invalidator.On("Invalidate", mock.Anything, u.ID).Return(stderrors.New("redis down"))

	name := "B"
	_, err = f.uc.UpdateSettings(ctx, SettingsParams{UserID: u.ID, Name: &name})
	require.NoError(t, err)
	assert.True(t, f.logger.Has("warn", "Failed to invalidate cached user"))
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Get(context.Background(), 42)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u, err := f.uc.Register(ctx, RegisterParams{Name: "A", Email: "a@example.com"})
	require.NoError(t, err)
	f.invalidator.On("Invalidate", mock.Anything, u.ID).Return(nil).Once()

	require.NoError(t, f.uc.Delete(ctx, u.ID))
	f.invalidator.AssertExpectations(t)

	_, err = f.uc.Get(ctx, u.ID)
	assert.True(t, errors.IsNotFoundError(err))

	err = f.uc.Delete(ctx, u.ID)
	assert.True(t, errors.IsNotFoundError(err))
	f.invalidator.AssertNumberOfCalls(t, "Invalidate", 1)

	assert.True(t, errors.IsValidationError(f.uc.Delete(ctx, 0)))
}
