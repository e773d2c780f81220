package database

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// PeriodDayRepositoryAdapter implements the PeriodDayRepository port using GORM
type PeriodDayRepositoryAdapter struct {
	db *gorm.DB
}

// NewPeriodDayRepositoryAdapter creates a new period day repository adapter
func NewPeriodDayRepositoryAdapter(db *gorm.DB) ports.PeriodDayRepository {
	return &PeriodDayRepositoryAdapter{db: db}
}

// Create persists a period day
func (r *PeriodDayRepositoryAdapter) Create(ctx context.Context, day *ports.PeriodDayData) error {
	if day == nil {
		return errors.NewValidationError("period day cannot be nil")
	}

	model := &PeriodDayModel{
		CycleID:     day.CycleID,
		UserID:      day.UserID,
		Date:        day.Date,
		FlowLevel:   day.FlowLevel,
		Description: day.Description,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.NewDatabaseError("failed to create period day", err)
	}

	day.ID = model.ID
	day.CreatedAt = model.CreatedAt
	return nil
}

// FindByID retrieves a period day by ID
func (r *PeriodDayRepositoryAdapter) FindByID(ctx context.Context, id uint) (*ports.PeriodDayData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("period day ID cannot be zero")
	}

	var model PeriodDayModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("period day not found")
		}
		return nil, errors.NewDatabaseError("failed to find period day", err)
	}

	return modelToPeriodDay(&model), nil
}

// FindByCycleAndDate retrieves the period day logged for a cycle on a date
func (r *PeriodDayRepositoryAdapter) FindByCycleAndDate(ctx context.Context, cycleID uint, date time.Time) (*ports.PeriodDayData, error) {
	var model PeriodDayModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ? AND date = ?", cycleID, date).
		First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("period day not found")
		}
		return nil, errors.NewDatabaseError("failed to find period day", err)
	}

	return modelToPeriodDay(&model), nil
}

// FindByUser returns the user's period days, newest first, optionally for one cycle
func (r *PeriodDayRepositoryAdapter) FindByUser(ctx context.Context, userID uint, cycleID *uint) ([]*ports.PeriodDayData, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cycleID != nil {
		query = query.Where("cycle_id = ?", *cycleID)
	}

	var models []PeriodDayModel
	if err := query.Order("date DESC").Order("id DESC").Find(&models).Error; err != nil {
		return nil, errors.NewDatabaseError("failed to list period days", err)
	}

	days := make([]*ports.PeriodDayData, 0, len(models))
	for i := range models {
		days = append(days, modelToPeriodDay(&models[i]))
	}
	return days, nil
}

// Update saves the date, flow level and description of a period day
func (r *PeriodDayRepositoryAdapter) Update(ctx context.Context, day *ports.PeriodDayData) error {
	if day == nil || day.ID == 0 {
		return errors.NewValidationError("period day ID cannot be zero")
	}

	result := r.db.WithContext(ctx).Model(&PeriodDayModel{}).Where("id = ?", day.ID).Updates(map[string]interface{}{
		"date":        day.Date,
		"flow_level":  day.FlowLevel,
		"description": day.Description,
	})
	if result.Error != nil {
		return errors.NewDatabaseError("failed to update period day", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("period day not found")
	}
	return nil
}

// Delete removes a period day
func (r *PeriodDayRepositoryAdapter) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&PeriodDayModel{}, id)
	if result.Error != nil {
		return errors.NewDatabaseError("failed to delete period day", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("period day not found")
	}
	return nil
}

// CountByCycle returns how many period days were logged for a cycle
func (r *PeriodDayRepositoryAdapter) CountByCycle(ctx context.Context, cycleID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&PeriodDayModel{}).Where("cycle_id = ?", cycleID).Count(&count).Error; err != nil {
		return 0, errors.NewDatabaseError("failed to count period days", err)
	}
	return count, nil
}

func modelToPeriodDay(model *PeriodDayModel) *ports.PeriodDayData {
	return &ports.PeriodDayData{
		ID:          model.ID,
		CycleID:     model.CycleID,
		UserID:      model.UserID,
		Date:        model.Date,
		FlowLevel:   model.FlowLevel,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
	}
}
