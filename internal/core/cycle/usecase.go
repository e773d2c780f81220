package cycle

import (
	"context"
	"fmt"
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// IrregularityDetector classifies a cycle and records new irregularities
type IrregularityDetector interface {
	Detect(ctx context.Context, cycle *ports.CycleData, asOf time.Time) ([]*ports.IrregularityData, error)
}

// Notifier is told about every committed cycle mutation. It must not fail.
type Notifier interface {
	NotifyCycleMutation(ctx context.Context, userID uint)
}

type UseCase struct {
	store    ports.Store
	users    ports.UserDirectory
	detector IrregularityDetector
	notifier Notifier
	config   ports.CycleConfigProvider
	clock    ports.Clock
	logger   ports.Logger
	metrics  ports.MetricsCollector
}

type UseCaseDependencies struct {
	Store    ports.Store
	Users    ports.UserDirectory
	Detector IrregularityDetector
	Notifier Notifier
	Config   ports.CycleConfigProvider
	Clock    ports.Clock
	Logger   ports.Logger
	Metrics  ports.MetricsCollector
}

// CreateParams describes a new cycle. A nil StartDate means today.
type CreateParams struct {
	UserID      uint
	StartDate   *time.Time
	Description string
}

// UpdateParams describes an edit of an existing cycle owned by UserID.
// Nil fields are left untouched.
type UpdateParams struct {
	ID          uint
	UserID      uint
	NewUserID   *uint
	StartDate   *time.Time
	EndDate     *time.Time
	Description *string
}

type ListParams struct {
	UserID     uint
	StartUntil *time.Time
	Page       int
	Limit      int
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Store == nil {
		return nil, errors.NewValidationError("store is required")
	}
	if deps.Users == nil {
		return nil, errors.NewValidationError("user directory is required")
	}
	if deps.Detector == nil {
		return nil, errors.NewValidationError("irregularity detector is required")
	}
	if deps.Notifier == nil {
		return nil, errors.NewValidationError("notifier is required")
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
		store:    deps.Store,
		users:    deps.Users,
		detector: deps.Detector,
		notifier: deps.Notifier,
		config:   deps.Config,
		clock:    deps.Clock,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}, nil
}

// Create admits a new cycle into the user's timeline, closes the cycle before
// it, stores predictions and phases, then runs irregularity detection on the
// closed cycle and notification evaluation for the user.
func (uc *UseCase) Create(ctx context.Context, params CreateParams) (*Cycle, error) {
	if params.UserID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}

	user, err := uc.users.Get(ctx, params.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", params.UserID, err)
	}

	cfg := uc.config.GetCycleConfig()
	avgCycle, avgPeriod := averages(user, cfg)
	policy := AdmissionPolicy{OverlapBufferDays: cfg.OverlapBufferDays, SpacingDays: cfg.SpacingDays}

	start := dateutil.UTCDate(uc.clock.Now())
	if params.StartDate != nil {
		start = dateutil.UTCDate(*params.StartDate)
	}

	var created *Cycle
	var previous *ports.CycleData

	err = uc.store.WithinUserTransaction(ctx, user.ID, func(tx ports.Store) error {
		rule, err := admit(ctx, tx.Cycles(), user.ID, start, avgPeriod, policy)
		if err != nil {
			if rule != AdmissionRuleNone {
				uc.metrics.RecordAdmissionRejected(ctx, rule.String())
				uc.logger.Info("Cycle admission rejected",
					ports.F("user_id", user.ID),
					ports.F("start_date", dateutil.Format(start)),
					ports.F("rule", rule.String()))
			}
			return err
		}

		prev, err := tx.Cycles().FindLatestBefore(ctx, user.ID, start)
		switch {
		case err == nil:
			end := dateutil.AddDays(start, -1)
			prev.EndDate = &end
			if err := tx.Cycles().Update(ctx, prev); err != nil {
				return fmt.Errorf("close previous cycle %d: %w", prev.ID, err)
			}
			previous = prev
		case !errors.IsNotFoundError(err):
			return fmt.Errorf("find previous cycle: %w", err)
		}

		prior, err := tx.Cycles().FindByUser(ctx, user.ID, ports.CycleFilter{StartBefore: &start})
		if err != nil {
			return fmt.Errorf("find prior cycles: %w", err)
		}
		prediction := Predict(start, startDates(prior, 0), avgCycle)

		data := &ports.CycleData{
			UserID:             user.ID,
			StartDate:          start,
			PredictedStartDate: prediction.StartDate,
			PredictedEndDate:   prediction.EndDate,
			Description:        params.Description,
		}

		// back-filled cycles end where the following one begins
		next, err := tx.Cycles().FindByUser(ctx, user.ID, ports.CycleFilter{StartAfter: &start})
		if err != nil {
			return fmt.Errorf("find following cycles: %w", err)
		}
		if len(next) > 0 {
			end := dateutil.AddDays(next[0].StartDate, -1)
			data.EndDate = &end
		}

		if err := tx.Cycles().Create(ctx, data); err != nil {
			return fmt.Errorf("create cycle: %w", err)
		}

		rows := toPhaseData(data.ID, ProjectPhases(start, avgCycle, avgPeriod))
		if err := tx.Phases().CreateMany(ctx, rows); err != nil {
			return fmt.Errorf("create phases: %w", err)
		}

		created = fromCycleData(data)
		created.Phases = fromPhaseData(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.RecordCycleCreated(ctx)
	uc.logger.Info("Cycle created",
		ports.F("user_id", user.ID),
		ports.F("cycle_id", created.ID),
		ports.F("start_date", dateutil.Format(start)),
		ports.F("predicted_end_date", dateutil.Format(created.PredictedEndDate)))

	if previous != nil {
		uc.detect(ctx, previous, start)
	}
	uc.notifier.NotifyCycleMutation(ctx, user.ID)

	return created, nil
}

// Update edits a cycle. A new start date re-runs the predictor; a new start
// date or owner regenerates the phases. Admission checks are not applied.
func (uc *UseCase) Update(ctx context.Context, params UpdateParams) (*Cycle, error) {
	current, err := uc.findOwned(ctx, params.UserID, params.ID)
	if err != nil {
		return nil, err
	}

	ownerID := current.UserID
	if params.NewUserID != nil {
		ownerID = *params.NewUserID
	}
	owner, err := uc.users.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", ownerID, err)
	}

	regenerate := params.StartDate != nil || ownerID != current.UserID
	avgCycle, avgPeriod := averages(owner, uc.config.GetCycleConfig())

	var updated *Cycle
	err = uc.store.WithinUserTransaction(ctx, ownerID, func(tx ports.Store) error {
		// Re-read under the transaction; edits apply to the stored row.
		fresh, err := tx.Cycles().FindByID(ctx, params.ID)
		if err != nil {
			return fmt.Errorf("find cycle %d: %w", params.ID, err)
		}
		if fresh.UserID != current.UserID {
			return errors.NewNotFoundError(fmt.Sprintf("cycle %d not found", params.ID))
		}
		current = fresh

		start := current.StartDate
		if params.StartDate != nil {
			start = dateutil.UTCDate(*params.StartDate)
		}
		if params.EndDate != nil && dateutil.DayDifference(start, *params.EndDate) < 0 {
			return errors.NewValidationError(fmt.Sprintf(
				"end date %s is before start date %s",
				dateutil.Format(*params.EndDate), dateutil.Format(start)))
		}

		if params.StartDate != nil {
			prior, err := tx.Cycles().FindByUser(ctx, ownerID, ports.CycleFilter{StartBefore: &start})
			if err != nil {
				return fmt.Errorf("find prior cycles: %w", err)
			}
			prediction := Predict(start, startDates(prior, current.ID), avgCycle)
			current.StartDate = start
			current.PredictedStartDate = prediction.StartDate
			current.PredictedEndDate = prediction.EndDate
		}
		if params.EndDate != nil {
			end := dateutil.UTCDate(*params.EndDate)
			current.EndDate = &end
		}
		if params.Description != nil {
			current.Description = *params.Description
		}
		current.UserID = ownerID

		if err := tx.Cycles().Update(ctx, current); err != nil {
			return fmt.Errorf("update cycle %d: %w", current.ID, err)
		}

		if regenerate {
			if err := tx.Phases().DeleteByCycle(ctx, current.ID); err != nil {
				return fmt.Errorf("delete phases: %w", err)
			}
			rows := toPhaseData(current.ID, ProjectPhases(current.StartDate, avgCycle, avgPeriod))
			if err := tx.Phases().CreateMany(ctx, rows); err != nil {
				return fmt.Errorf("create phases: %w", err)
			}
		}

		phases, err := tx.Phases().FindByCycle(ctx, current.ID)
		if err != nil {
			return fmt.Errorf("find phases: %w", err)
		}
		updated = fromCycleData(current)
		updated.Phases = fromPhaseData(phases)
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Cycle updated",
		ports.F("user_id", ownerID),
		ports.F("cycle_id", updated.ID),
		ports.F("phases_regenerated", regenerate))

	uc.notifier.NotifyCycleMutation(ctx, ownerID)

	return updated, nil
}

// Get returns one of the user's cycles with its phases
func (uc *UseCase) Get(ctx context.Context, userID, id uint) (*Cycle, error) {
	data, err := uc.findOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	phases, err := uc.store.Phases().FindByCycle(ctx, data.ID)
	if err != nil {
		return nil, fmt.Errorf("find phases: %w", err)
	}

	c := fromCycleData(data)
	c.Phases = fromPhaseData(phases)
	return c, nil
}

// List returns the user's cycles newest first
func (uc *UseCase) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.UserID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}
	page, limit := normalizePage(params.Page, params.Limit)

	var until *time.Time
	if params.StartUntil != nil {
		d := dateutil.UTCDate(*params.StartUntil)
		until = &d
	}

	rows, total, err := uc.store.Cycles().ListPage(ctx, params.UserID, until, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}

	cycles := make([]*Cycle, 0, len(rows))
	for _, row := range rows {
		phases, err := uc.store.Phases().FindByCycle(ctx, row.ID)
		if err != nil {
			return nil, fmt.Errorf("find phases for cycle %d: %w", row.ID, err)
		}
		c := fromCycleData(row)
		c.Phases = fromPhaseData(phases)
		cycles = append(cycles, c)
	}

	return &ListResult{Cycles: cycles, Meta: NewPageMeta(total, page, limit)}, nil
}

// Delete removes one of the user's cycles together with its phases
func (uc *UseCase) Delete(ctx context.Context, userID, id uint) error {
	if _, err := uc.findOwned(ctx, userID, id); err != nil {
		return err
	}

	err := uc.store.WithinUserTransaction(ctx, userID, func(tx ports.Store) error {
		if err := tx.Phases().DeleteByCycle(ctx, id); err != nil {
			return fmt.Errorf("delete phases: %w", err)
		}
		if err := tx.Cycles().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete cycle: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.logger.Info("Cycle deleted", ports.F("user_id", userID), ports.F("cycle_id", id))
	return nil
}

func (uc *UseCase) findOwned(ctx context.Context, userID, id uint) (*ports.CycleData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("cycle id is required")
	}

	data, err := uc.store.Cycles().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find cycle %d: %w", id, err)
	}
	if userID != 0 && data.UserID != userID {
		return nil, errors.NewNotFoundError(fmt.Sprintf("cycle %d not found", id))
	}
	return data, nil
}

func (uc *UseCase) detect(ctx context.Context, previous *ports.CycleData, asOf time.Time) {
	found, err := uc.detector.Detect(ctx, previous, asOf)
	if err != nil {
		uc.logger.Error("Irregularity detection failed",
			ports.F("cycle_id", previous.ID),
			ports.F("error", err))
		return
	}
	if len(found) > 0 {
		uc.logger.Info("Irregularities recorded",
			ports.F("cycle_id", previous.ID),
			ports.F("count", len(found)))
	}
}

func averages(user *ports.UserData, cfg ports.CycleConfig) (int, int) {
	cycleLength := user.AvgCycleLength
	if cycleLength <= 0 {
		cycleLength = cfg.DefaultCycleLength
	}
	periodLength := user.AvgPeriodLength
	if periodLength <= 0 {
		periodLength = cfg.DefaultPeriodLength
	}
	return cycleLength, periodLength
}

func startDates(cycles []*ports.CycleData, skipID uint) []time.Time {
	dates := make([]time.Time, 0, len(cycles))
	for _, c := range cycles {
		if skipID != 0 && c.ID == skipID {
			continue
		}
		dates = append(dates, c.StartDate)
	}
	return dates
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
