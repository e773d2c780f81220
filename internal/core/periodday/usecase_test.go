package periodday

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/adapters/database"
	"luna.app/internal/ports"
	"luna.app/internal/testutil"
	"luna.app/pkg/errors"
)

func setup(t *testing.T) (*UseCase, *database.StoreAdapter, ports.UserRepository) {
	t.Helper()

	db := testutil.NewDB(t)
	store := database.NewStoreAdapter(db)
	users := database.NewUserRepositoryAdapter(db)

	uc, err := NewUseCase(UseCaseDependencies{
		Store:  store,
		Users:  testutil.Users{Repo: users},
		Clock:  testutil.NewClock(time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)),
		Logger: &testutil.Logger{},
	})
	require.NoError(t, err)
	return uc, store, users
}

func seedCycle(t *testing.T, store ports.Store, userID uint) *ports.CycleData {
	t.Helper()
	c := &ports.CycleData{UserID: userID, StartDate: testutil.Date(t, "2025-03-01")}
	require.NoError(t, store.Cycles().Create(context.Background(), c))
	return c
}

func TestLog(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	c := seedCycle(t, store, u.ID)

	day, err := uc.Log(context.Background(), LogParams{
		UserID:      u.ID,
		CycleID:     c.ID,
		Date:        time.Date(2025, 3, 2, 18, 30, 0, 0, time.UTC),
		FlowLevel:   FlowLevelHeavy,
		Description: "cramps",
	})
	require.NoError(t, err)

	assert.NotZero(t, day.ID)
	assert.Equal(t, FlowLevelHeavy, day.FlowLevel)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), day.Date)

	count, err := store.PeriodDays().CountByCycle(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLog_Validation(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	c := seedCycle(t, store, u.ID)
	date := testutil.Date(t, "2025-03-02")

	tests := []struct {
		name   string
		params LogParams
	}{
		{"missing user", LogParams{CycleID: c.ID, Date: date, FlowLevel: FlowLevelLight}},
		{"missing cycle", LogParams{UserID: u.ID, Date: date, FlowLevel: FlowLevelLight}},
		{"missing date", LogParams{UserID: u.ID, CycleID: c.ID, FlowLevel: FlowLevelLight}},
		{"unknown flow", LogParams{UserID: u.ID, CycleID: c.ID, Date: date}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Log(context.Background(), tt.params)
			assert.True(t, errors.IsValidationError(err))
		})
	}
}

func TestLog_ForeignCycle(t *testing.T) {
	uc, store, users := setup(t)
	owner := testutil.CreateUser(t, users, "owner", "")
	other := testutil.CreateUser(t, users, "other", "")
	c := seedCycle(t, store, owner.ID)

	_, err := uc.Log(context.Background(), LogParams{
		UserID:    other.ID,
		CycleID:   c.ID,
		Date:      testutil.Date(t, "2025-03-02"),
		FlowLevel: FlowLevelMedium,
	})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestListAndDelete(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	other := testutil.CreateUser(t, users, "other", "")
	c := seedCycle(t, store, u.ID)
	ctx := context.Background()

	for _, d := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		_, err := uc.Log(ctx, LogParams{UserID: u.ID, CycleID: c.ID, Date: testutil.Date(t, d), FlowLevel: FlowLevelMedium})
		require.NoError(t, err)
	}

	days, err := uc.List(ctx, u.ID, &c.ID)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 3, days[0].Date.Day())

	err = uc.Delete(ctx, other.ID, days[0].ID)
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, uc.Delete(ctx, u.ID, days[0].ID))
	days, err = uc.List(ctx, u.ID, nil)
	require.NoError(t, err)
	assert.Len(t, days, 2)
}

func TestLog_SameDateReplacesEntry(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	c := seedCycle(t, store, u.ID)
	ctx := context.Background()

	levels := []FlowLevel{FlowLevelLight, FlowLevelHeavy, FlowLevelMedium, FlowLevelHeavy,
		FlowLevelLight, FlowLevelMedium, FlowLevelHeavy, FlowLevelLight}
	var first *PeriodDay
	for i, level := range levels {
		day, err := uc.Log(ctx, LogParams{
			UserID:    u.ID,
			CycleID:   c.ID,
			Date:      time.Date(2025, 3, 2, i, 0, 0, 0, time.UTC),
			FlowLevel: level,
		})
		require.NoError(t, err)
		if first == nil {
			first = day
		}
		assert.Equal(t, first.ID, day.ID)
	}

	count, err := store.PeriodDays().CountByCycle(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	days, err := uc.List(ctx, u.ID, &c.ID)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, FlowLevelLight, days[0].FlowLevel)
}

func TestLog_DateOutsideCycle(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	open := seedCycle(t, store, u.ID)

	start := testutil.Date(t, "2025-01-01")
	end := testutil.Date(t, "2025-01-28")
	closed := &ports.CycleData{UserID: u.ID, StartDate: start, EndDate: &end}
	require.NoError(t, store.Cycles().Create(context.Background(), closed))

	tests := []struct {
		name    string
		cycleID uint
		date    string
	}{
		{"before start", open.ID, "2025-02-28"},
		{"in the future", open.ID, "2026-09-09"},
		{"after end", closed.ID, "2025-01-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Log(context.Background(), LogParams{
				UserID:    u.ID,
				CycleID:   tt.cycleID,
				Date:      testutil.Date(t, tt.date),
				FlowLevel: FlowLevelMedium,
			})
			assert.True(t, errors.IsValidationError(err))
		})
	}

	for _, id := range []uint{open.ID, closed.ID} {
		count, err := store.PeriodDays().CountByCycle(context.Background(), id)
		require.NoError(t, err)
		assert.Zero(t, count)
	}

	_, err := uc.Log(context.Background(), LogParams{
		UserID: u.ID, CycleID: closed.ID, Date: end, FlowLevel: FlowLevelLight,
	})
	assert.NoError(t, err)
}

func TestGet(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	other := testutil.CreateUser(t, users, "other", "")
	c := seedCycle(t, store, u.ID)
	ctx := context.Background()

	logged, err := uc.Log(ctx, LogParams{UserID: u.ID, CycleID: c.ID, Date: testutil.Date(t, "2025-03-04"), FlowLevel: FlowLevelMedium})
	require.NoError(t, err)

	day, err := uc.Get(ctx, u.ID, logged.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(t, "2025-03-04"), day.Date.UTC())

	_, err = uc.Get(ctx, other.ID, logged.ID)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdate(t *testing.T) {
	uc, store, users := setup(t)
	u := testutil.CreateUser(t, users, "ines", "")
	c := seedCycle(t, store, u.ID)
	ctx := context.Background()

	logged, err := uc.Log(ctx, LogParams{UserID: u.ID, CycleID: c.ID, Date: testutil.Date(t, "2025-03-02"), FlowLevel: FlowLevelMedium, Description: "ok"})
	require.NoError(t, err)
	neighbour, err := uc.Log(ctx, LogParams{UserID: u.ID, CycleID: c.ID, Date: testutil.Date(t, "2025-03-03"), FlowLevel: FlowLevelLight})
	require.NoError(t, err)

	heavy := FlowLevelHeavy
	moved := testutil.Date(t, "2025-03-05")
	updated, err := uc.Update(ctx, UpdateParams{UserID: u.ID, ID: logged.ID, Date: &moved, FlowLevel: &heavy})
	require.NoError(t, err)
	assert.Equal(t, FlowLevelHeavy, updated.FlowLevel)
	assert.Equal(t, moved, updated.Date)
	assert.Equal(t, "ok", updated.Description)

	stored, err := uc.Get(ctx, u.ID, logged.ID)
	require.NoError(t, err)
	assert.Equal(t, FlowLevelHeavy, stored.FlowLevel)
	assert.Equal(t, moved, stored.Date.UTC())

	taken := testutil.Date(t, "2025-03-03")
	_, err = uc.Update(ctx, UpdateParams{UserID: u.ID, ID: logged.ID, Date: &taken})
	assert.True(t, errors.IsAlreadyExistsError(err))

	early := testutil.Date(t, "2025-02-20")
	_, err = uc.Update(ctx, UpdateParams{UserID: u.ID, ID: neighbour.ID, Date: &early})
	assert.True(t, errors.IsValidationError(err))

	bogus := FlowLevelUnknown
	_, err = uc.Update(ctx, UpdateParams{UserID: u.ID, ID: neighbour.ID, FlowLevel: &bogus})
	assert.True(t, errors.IsValidationError(err))

	other := testutil.CreateUser(t, users, "other", "")
	_, err = uc.Update(ctx, UpdateParams{UserID: other.ID, ID: neighbour.ID, FlowLevel: &heavy})
	assert.True(t, errors.IsNotFoundError(err))
}

func TestFlowLevel_Order(t *testing.T) {
	assert.Less(t, int(FlowLevelNone), int(FlowLevelLight))
	assert.Less(t, int(FlowLevelLight), int(FlowLevelMedium))
	assert.Less(t, int(FlowLevelMedium), int(FlowLevelHeavy))
	assert.Equal(t, FlowLevelHeavy, FlowLevelFromString("heavy"))
	assert.False(t, FlowLevelFromString("gushing").IsValid())
}
