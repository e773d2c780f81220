package periodday

import (
	"context"
	"fmt"
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

type UseCase struct {
	store  ports.Store
	users  ports.UserDirectory
	clock  ports.Clock
	logger ports.Logger
}

type UseCaseDependencies struct {
	Store  ports.Store
	Users  ports.UserDirectory
	Clock  ports.Clock
	Logger ports.Logger
}

type LogParams struct {
	UserID      uint
	CycleID     uint
	Date        time.Time
	FlowLevel   FlowLevel
	Description string
}

// UpdateParams carries a partial edit; nil fields are left unchanged
type UpdateParams struct {
	UserID      uint
	ID          uint
	Date        *time.Time
	FlowLevel   *FlowLevel
	Description *string
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.Store == nil {
		return nil, errors.NewValidationError("store is required")
	}
	if deps.Users == nil {
		return nil, errors.NewValidationError("user directory is required")
	}
	if deps.Clock == nil {
		return nil, errors.NewValidationError("clock is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		store:  deps.Store,
		users:  deps.Users,
		clock:  deps.Clock,
		logger: deps.Logger,
	}, nil
}

// Log records a period day against one of the user's cycles. Logging a date
// that already has an entry replaces its flow level and description.
func (uc *UseCase) Log(ctx context.Context, params LogParams) (*PeriodDay, error) {
	if params.UserID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}
	if params.CycleID == 0 {
		return nil, errors.NewValidationError("cycle id is required")
	}
	if params.Date.IsZero() {
		return nil, errors.NewValidationError("date is required")
	}
	if !params.FlowLevel.IsValid() {
		return nil, errors.NewValidationError("flow level must be one of none, light, medium, heavy")
	}

	if _, err := uc.users.Get(ctx, params.UserID); err != nil {
		return nil, fmt.Errorf("get user %d: %w", params.UserID, err)
	}

	date := dateutil.UTCDate(params.Date)
	var data *ports.PeriodDayData
	err := uc.store.WithinUserTransaction(ctx, params.UserID, func(tx ports.Store) error {
		c, err := uc.ownedCycle(ctx, tx, params.UserID, params.CycleID)
		if err != nil {
			return err
		}
		if err := uc.checkWithinCycle(c, date); err != nil {
			return err
		}

		existing, err := tx.PeriodDays().FindByCycleAndDate(ctx, c.ID, date)
		switch {
		case err == nil:
			existing.FlowLevel = params.FlowLevel.String()
			existing.Description = params.Description
			if err := tx.PeriodDays().Update(ctx, existing); err != nil {
				return fmt.Errorf("update period day: %w", err)
			}
			data = existing
			return nil
		case errors.IsNotFoundError(err):
		default:
			return fmt.Errorf("find period day: %w", err)
		}

		data = &ports.PeriodDayData{
			CycleID:     c.ID,
			UserID:      params.UserID,
			Date:        date,
			FlowLevel:   params.FlowLevel.String(),
			Description: params.Description,
		}
		if err := tx.PeriodDays().Create(ctx, data); err != nil {
			return fmt.Errorf("create period day: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("Period day logged",
		ports.F("user_id", data.UserID),
		ports.F("cycle_id", data.CycleID),
		ports.F("date", dateutil.Format(data.Date)),
		ports.F("flow_level", data.FlowLevel))

	return fromData(data), nil
}

// Get returns one of the user's period days
func (uc *UseCase) Get(ctx context.Context, userID, id uint) (*PeriodDay, error) {
	day, err := uc.findOwned(ctx, uc.store, userID, id)
	if err != nil {
		return nil, err
	}
	return fromData(day), nil
}

// Update edits a logged day. A new date must stay inside the cycle and must
// not collide with another day of the same cycle.
func (uc *UseCase) Update(ctx context.Context, params UpdateParams) (*PeriodDay, error) {
	if params.UserID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}
	if params.FlowLevel != nil && !params.FlowLevel.IsValid() {
		return nil, errors.NewValidationError("flow level must be one of none, light, medium, heavy")
	}
	if params.Date != nil && params.Date.IsZero() {
		return nil, errors.NewValidationError("date cannot be empty")
	}

	var day *ports.PeriodDayData
	err := uc.store.WithinUserTransaction(ctx, params.UserID, func(tx ports.Store) error {
		var err error
		day, err = uc.findOwned(ctx, tx, params.UserID, params.ID)
		if err != nil {
			return err
		}

		if params.Date != nil {
			date := dateutil.UTCDate(*params.Date)
			c, err := uc.ownedCycle(ctx, tx, params.UserID, day.CycleID)
			if err != nil {
				return err
			}
			if err := uc.checkWithinCycle(c, date); err != nil {
				return err
			}
			if !date.Equal(dateutil.UTCDate(day.Date)) {
				_, err := tx.PeriodDays().FindByCycleAndDate(ctx, day.CycleID, date)
				if err == nil {
					return errors.NewAlreadyExistsError(
						fmt.Sprintf("a period day is already logged on %s", dateutil.Format(date)))
				}
				if !errors.IsNotFoundError(err) {
					return fmt.Errorf("find period day: %w", err)
				}
			}
			day.Date = date
		}
		if params.FlowLevel != nil {
			day.FlowLevel = params.FlowLevel.String()
		}
		if params.Description != nil {
			day.Description = *params.Description
		}

		if err := tx.PeriodDays().Update(ctx, day); err != nil {
			return fmt.Errorf("update period day: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("Period day updated",
		ports.F("user_id", day.UserID),
		ports.F("period_day_id", day.ID))

	return fromData(day), nil
}

// List returns the user's period days, optionally limited to one cycle
func (uc *UseCase) List(ctx context.Context, userID uint, cycleID *uint) ([]*PeriodDay, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user id is required")
	}

	rows, err := uc.store.PeriodDays().FindByUser(ctx, userID, cycleID)
	if err != nil {
		return nil, fmt.Errorf("list period days: %w", err)
	}

	days := make([]*PeriodDay, 0, len(rows))
	for _, row := range rows {
		days = append(days, fromData(row))
	}
	return days, nil
}

// Delete removes one of the user's period days
func (uc *UseCase) Delete(ctx context.Context, userID, id uint) error {
	if _, err := uc.findOwned(ctx, uc.store, userID, id); err != nil {
		return err
	}

	if err := uc.store.PeriodDays().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete period day: %w", err)
	}
	return nil
}

func (uc *UseCase) findOwned(ctx context.Context, store ports.Store, userID, id uint) (*ports.PeriodDayData, error) {
	day, err := store.PeriodDays().FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find period day %d: %w", id, err)
	}
	if day.UserID != userID {
		return nil, errors.NewNotFoundError(fmt.Sprintf("period day %d not found", id))
	}
	return day, nil
}

func (uc *UseCase) ownedCycle(ctx context.Context, store ports.Store, userID, cycleID uint) (*ports.CycleData, error) {
	c, err := store.Cycles().FindByID(ctx, cycleID)
	if err != nil {
		return nil, fmt.Errorf("find cycle %d: %w", cycleID, err)
	}
	if c.UserID != userID {
		return nil, errors.NewNotFoundError(fmt.Sprintf("cycle %d not found", cycleID))
	}
	return c, nil
}

// checkWithinCycle bounds a day to [start, end]; an open cycle ends today.
func (uc *UseCase) checkWithinCycle(c *ports.CycleData, date time.Time) error {
	start := dateutil.UTCDate(c.StartDate)
	if date.Before(start) {
		return errors.NewValidationError(
			fmt.Sprintf("date %s is before the cycle start %s", dateutil.Format(date), dateutil.Format(start)))
	}

	if c.EndDate != nil {
		end := dateutil.UTCDate(*c.EndDate)
		if date.After(end) {
			return errors.NewValidationError(
				fmt.Sprintf("date %s is after the cycle end %s", dateutil.Format(date), dateutil.Format(end)))
		}
		return nil
	}

	if today := dateutil.UTCDate(uc.clock.Now()); date.After(today) {
		return errors.NewValidationError(fmt.Sprintf("date %s is in the future", dateutil.Format(date)))
	}
	return nil
}
