package irregularity

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luna.app/internal/adapters/database"
	"luna.app/internal/ports"
	"luna.app/internal/testutil"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

type fixture struct {
	uc      *UseCase
	store   *database.StoreAdapter
	user    *ports.UserData
	queue   *testutil.Queue
	config  *testutil.Config
	metrics *testutil.Metrics
	logger  *testutil.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	users := database.NewUserRepositoryAdapter(db)
	f := &fixture{
		store:   database.NewStoreAdapter(db),
		queue:   &testutil.Queue{},
		config:  testutil.DefaultConfig(),
		metrics: testutil.NewMetrics(),
		logger:  &testutil.Logger{},
	}
	f.user = testutil.CreateUser(t, users, "noor", "")

	uc, err := NewUseCase(UseCaseDependencies{
		Store:   f.store,
		Users:   testutil.Users{Repo: users},
		Queue:   f.queue,
		Config:  f.config,
		Clock:   testutil.NewClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)),
		Logger:  f.logger,
		Metrics: f.metrics,
	})
	require.NoError(t, err)
	f.uc = uc
	return f
}

// closedCycle stores a cycle of the given length with periodDays logged days
func (f *fixture) closedCycle(t *testing.T, start string, length, periodDays int) *ports.CycleData {
	t.Helper()
	ctx := context.Background()

	s := testutil.Date(t, start)
	end := dateutil.AddDays(s, length)
	c := &ports.CycleData{UserID: f.user.ID, StartDate: s, EndDate: &end}
	require.NoError(t, f.store.Cycles().Create(ctx, c))

	for i := 0; i < periodDays; i++ {
		require.NoError(t, f.store.PeriodDays().Create(ctx, &ports.PeriodDayData{
			CycleID:   c.ID,
			UserID:    f.user.ID,
			Date:      dateutil.AddDays(s, i),
			FlowLevel: "medium",
		}))
	}
	return c
}

func TestDetect_ShortCycle(t *testing.T) {
	f := newFixture(t)
	c := f.closedCycle(t, "2025-03-01", 20, 4)

	found, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "short_cycle", found[0].Type)
	assert.Equal(t, c.ID, found[0].CycleID)
	assert.Equal(t, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), found[0].CreatedAt)
	assert.Equal(t, 1, f.metrics.Count("irregularity:short_cycle"))
}

func TestDetect_LongCycle(t *testing.T) {
	f := newFixture(t)
	c := f.closedCycle(t, "2025-03-01", 36, 4)

	found, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "long_cycle", found[0].Type)
}

func TestDetect_NormalCycle(t *testing.T) {
	f := newFixture(t)
	c := f.closedCycle(t, "2025-03-01", 28, 4)

	found, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Empty(t, f.queue.Jobs)
}

func TestDetect_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	c := f.closedCycle(t, "2025-03-01", 20, 4)
	ctx := context.Background()

	_, err := f.uc.Detect(ctx, c, *c.EndDate)
	require.NoError(t, err)
	again, err := f.uc.Detect(ctx, c, *c.EndDate)
	require.NoError(t, err)
	assert.Empty(t, again)

	rows, total, err := f.store.Irregularities().FindByUser(ctx, f.user.ID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, rows, 1)
	assert.Len(t, f.queue.Jobs, 1)
}

func TestDetect_FlowRules(t *testing.T) {
	f := newFixture(t)
	heavy := f.closedCycle(t, "2025-01-01", 28, 8)
	light := f.closedCycle(t, "2025-02-01", 28, 1)

	found, err := f.uc.Detect(context.Background(), heavy, *heavy.EndDate)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "heavy_flow", found[0].Type)

	found, err = f.uc.Detect(context.Background(), light, *light.EndDate)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "light_flow", found[0].Type)
}

func TestDetect_FlowChecksDisabled(t *testing.T) {
	f := newFixture(t)
	f.config.Cycle.FlowChecksEnabled = false
	c := f.closedCycle(t, "2025-01-01", 28, 0)

	found, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDetect_MissedPeriod(t *testing.T) {
	f := newFixture(t)
	c := &ports.CycleData{UserID: f.user.ID, StartDate: testutil.Date(t, "2025-03-01")}
	require.NoError(t, f.store.Cycles().Create(context.Background(), c))

	found, err := f.uc.Detect(context.Background(), c, testutil.Date(t, "2025-04-15"))
	require.NoError(t, err)
	assert.Empty(t, found)

	found, err = f.uc.Detect(context.Background(), c, testutil.Date(t, "2025-04-16"))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "missed_period", found[0].Type)
}

func TestDetect_EnqueuesEmail(t *testing.T) {
	f := newFixture(t)
	c := f.closedCycle(t, "2025-03-01", 20, 4)

	_, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)

	require.Len(t, f.queue.Jobs, 1)
	job := f.queue.Jobs[0]
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, f.user.Email, job.Params.To)
	assert.Equal(t, "Cycle irregularity detected", job.Params.Subject)
	assert.True(t, job.Params.IsHTML)
	assert.Contains(t, job.Params.Body, "2025-03-01")
	assert.Contains(t, job.Params.Body, TypeShortCycle.Label())
	assert.Equal(t, 1, f.metrics.Count("email_job:enqueued"))
}

func TestDetect_EnqueueFailureIsNotPropagated(t *testing.T) {
	f := newFixture(t)
	f.queue.Err = stderrors.New("redis down")
	c := f.closedCycle(t, "2025-03-01", 20, 4)

	found, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, 1, f.metrics.Count("email_job:enqueue_failed"))
	assert.True(t, f.logger.Has("error", "Failed to enqueue irregularity email"))
}

func TestDetect_EmailDisabled(t *testing.T) {
	f := newFixture(t)
	f.config.Notification.IrregularityEmailEnabled = false
	c := f.closedCycle(t, "2025-03-01", 20, 4)

	_, err := f.uc.Detect(context.Background(), c, *c.EndDate)
	require.NoError(t, err)
	assert.Empty(t, f.queue.Jobs)
}

func TestDetect_NilCycle(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.Detect(context.Background(), nil, time.Now())
	assert.True(t, errors.IsValidationError(err))
}

func TestList(t *testing.T) {
	f := newFixture(t)
	first := f.closedCycle(t, "2025-01-01", 20, 4)
	second := f.closedCycle(t, "2025-02-01", 40, 4)
	ctx := context.Background()

	_, err := f.uc.Detect(ctx, first, *first.EndDate)
	require.NoError(t, err)
	_, err = f.uc.Detect(ctx, second, *second.EndDate)
	require.NoError(t, err)

	res, err := f.uc.List(ctx, f.user.ID, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)
	require.Len(t, res.Irregularities, 1)

	res, err = f.uc.List(ctx, f.user.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 10, res.Limit)
	assert.Len(t, res.Irregularities, 2)
}

func TestGetAndDelete(t *testing.T) {
	f := newFixture(t)
	c := f.closedCycle(t, "2025-01-01", 20, 4)
	ctx := context.Background()

	found, err := f.uc.Detect(ctx, c, *c.EndDate)
	require.NoError(t, err)
	require.Len(t, found, 1)
	id := found[0].ID

	got, err := f.uc.Get(ctx, f.user.ID, id)
	require.NoError(t, err)
	assert.Equal(t, TypeShortCycle, got.Type)
	assert.Equal(t, c.ID, got.CycleID)

	_, err = f.uc.Get(ctx, f.user.ID+1, id)
	assert.True(t, errors.IsNotFoundError(err))
	assert.True(t, errors.IsNotFoundError(f.uc.Delete(ctx, f.user.ID+1, id)))

	require.NoError(t, f.uc.Delete(ctx, f.user.ID, id))
	assert.True(t, f.logger.Has("info", "Irregularity dismissed"))

	_, err = f.uc.Get(ctx, f.user.ID, id)
	assert.True(t, errors.IsNotFoundError(err))

	res, err := f.uc.List(ctx, f.user.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, res.Total)
}
