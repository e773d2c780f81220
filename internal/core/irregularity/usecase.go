package irregularity

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"

	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

// Config is the slice of configuration the detector reads
type Config interface {
	ports.CycleConfigProvider
	ports.NotificationConfigProvider
}

type UseCase struct {
	store   ports.Store
	users   ports.UserDirectory
	queue   ports.EmailQueue
	config  Config
	clock   ports.Clock
	logger  ports.Logger
	metrics ports.MetricsCollector
}

type UseCaseDependencies struct {
	Store   ports.Store
	Users   ports.UserDirectory
	Queue   ports.EmailQueue
	Config  Config
	Clock   ports.Clock
	Logger  ports.Logger
	Metrics ports.MetricsCollector
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Store == nil {
		return nil, errors.NewValidationError("store is required")
	}
	if deps.Users == nil {
		return nil, errors.NewValidationError("user directory is required")
	}
	if deps.Queue == nil {
		return nil, errors.NewValidationError("email queue is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Clock == nil {
		return nil, errors.NewValidationError("clock is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics collector is required")
	}

	return &UseCase{
		store:   deps.Store,
		users:   deps.Users,
		queue:   deps.Queue,
		config:  deps.Config,
		clock:   deps.Clock,
		logger:  deps.Logger,
		metrics: deps.Metrics,
	}, nil
}

// Detect classifies the cycle as of asOf and records every classification not
// already stored for it. Only the newly created rows are returned.
func (uc *UseCase) Detect(ctx context.Context, cycle *ports.CycleData, asOf time.Time) ([]*ports.IrregularityData, error) {
	if cycle == nil {
		return nil, errors.NewValidationError("cycle is required")
	}

	th := ThresholdsFromConfig(uc.config.GetCycleConfig())
	var created []*ports.IrregularityData

	err := uc.store.WithinUserTransaction(ctx, cycle.UserID, func(tx ports.Store) error {
		facts := Facts{StartDate: cycle.StartDate, EndDate: cycle.EndDate}
		if th.FlowChecksEnabled && cycle.EndDate != nil {
			count, err := tx.PeriodDays().CountByCycle(ctx, cycle.ID)
			if err != nil {
				return fmt.Errorf("count period days: %w", err)
			}
			facts.PeriodDayCount = count
		}

		for _, t := range Classify(facts, asOf, th) {
			exists, err := tx.Irregularities().ExistsFor(ctx, cycle.ID, t.String())
			if err != nil {
				return fmt.Errorf("check existing %s: %w", t, err)
			}
			if exists {
				continue
			}

			row := &ports.IrregularityData{
				UserID:    cycle.UserID,
				CycleID:   cycle.ID,
				Type:      t.String(),
				CreatedAt: uc.clock.Now(),
			}
			if err := tx.Irregularities().Create(ctx, row); err != nil {
				return fmt.Errorf("create %s: %w", t, err)
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, row := range created {
		uc.metrics.RecordIrregularity(ctx, row.Type)
		uc.logger.Info("Irregularity detected",
			ports.F("user_id", row.UserID),
			ports.F("cycle_id", row.CycleID),
			ports.F("type", row.Type))
	}

	if len(created) > 0 && uc.config.GetNotificationConfig().IrregularityEmailEnabled {
		uc.enqueueEmail(ctx, cycle, created)
	}

	return created, nil
}

// List returns the user's irregularities newest first
func (uc *UseCase) List(ctx context.Context, userID uint, page, limit int) (*ListResult, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	rows, total, err := uc.store.Irregularities().FindByUser(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list irregularities: %w", err)
	}

	result := &ListResult{
		Irregularities: make([]*Irregularity, 0, len(rows)),
		Total:          total,
		Page:           page,
		Limit:          limit,
	}
	for _, row := range rows {
		result.Irregularities = append(result.Irregularities, FromData(row))
	}
	return result, nil
}

// Get returns one of the user's irregularities
func (uc *UseCase) Get(ctx context.Context, userID, id uint) (*Irregularity, error) {
	row, err := uc.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return FromData(row), nil
}

// Delete dismisses one of the user's irregularities
func (uc *UseCase) Delete(ctx context.Context, userID, id uint) error {
	row, err := uc.findOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := uc.store.Irregularities().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete irregularity: %w", err)
	}

	uc.logger.Info("Irregularity dismissed",
		ports.F("user_id", userID),
		ports.F("cycle_id", row.CycleID),
		ports.F("type", row.Type))
	return nil
}

func (uc *UseCase) findOwned(ctx context.Context, userID, id uint) (*ports.IrregularityData, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}

	row, err := uc.store.Irregularities().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find irregularity %d: %w", id, err)
	}
	if row.UserID != userID {
		return nil, errors.NewNotFoundError(fmt.Sprintf("irregularity %d not found", id))
	}
	return row, nil
}

func (uc *UseCase) enqueueEmail(ctx context.Context, cycle *ports.CycleData, found []*ports.IrregularityData) {
	user, err := uc.users.Get(ctx, cycle.UserID)
	if err != nil {
		uc.logger.Warn("Skipping irregularity email, user lookup failed",
			ports.F("user_id", cycle.UserID),
			ports.F("error", err))
		return
	}
	if strings.TrimSpace(user.Email) == "" {
		return
	}

	job := ports.EmailJob{
		ID: uuid.NewString(),
		Params: ports.EmailParams{
			To:      user.Email,
			Subject: "Cycle irregularity detected",
			Body:    buildEmailBody(user.Name, cycle, found),
			IsHTML:  true,
		},
		EnqueuedAt: uc.clock.Now(),
	}

	if err := uc.queue.Enqueue(ctx, job); err != nil {
		uc.metrics.RecordEmailJob(ctx, "enqueue_failed")
		uc.logger.Error("Failed to enqueue irregularity email",
			ports.F("user_id", user.ID),
			ports.F("error", err))
		return
	}
	uc.metrics.RecordEmailJob(ctx, "enqueued")
	uc.logger.Debug("Irregularity email enqueued", ports.F("job_id", job.ID), ports.F("user_id", user.ID))
}

func buildEmailBody(name string, cycle *ports.CycleData, found []*ports.IrregularityData) string {
	var items strings.Builder
	for _, row := range found {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(TypeFromString(row.Type).Label()))
	}

	greeting := "Hello"
	if strings.TrimSpace(name) != "" {
		greeting = "Hello " + html.EscapeString(name)
	}

	return fmt.Sprintf(`
		<h2>%s,</h2>
		<p>We noticed something unusual about your cycle that started on <strong>%s</strong>:</p>
		<ul>%s</ul>
		<p style="font-size: 12px; color: #888;">
			Cycles vary for many reasons. If this keeps happening, consider talking to a gynecologist.
		</p>`,
		greeting, dateutil.Format(cycle.StartDate), items.String())
}
