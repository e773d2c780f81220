package database

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// CycleRepositoryAdapter implements the CycleRepository port using GORM
type CycleRepositoryAdapter struct {
	db *gorm.DB
}

// NewCycleRepositoryAdapter creates a new cycle repository adapter
func NewCycleRepositoryAdapter(db *gorm.DB) ports.CycleRepository {
	return &CycleRepositoryAdapter{db: db}
}

// Create persists a new cycle and assigns its ID
func (r *CycleRepositoryAdapter) Create(ctx context.Context, cycle *ports.CycleData) error {
	if cycle == nil {
		return errors.NewValidationError("cycle cannot be nil")
	}

	model := r.dataToModel(cycle)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.NewDatabaseError("failed to create cycle", err)
	}

	cycle.ID = model.ID
	cycle.CreatedAt = model.CreatedAt
	cycle.UpdatedAt = model.UpdatedAt
	return nil
}

// Update saves every field of an existing cycle
func (r *CycleRepositoryAdapter) Update(ctx context.Context, cycle *ports.CycleData) error {
	if cycle == nil {
		return errors.NewValidationError("cycle cannot be nil")
	}
	if cycle.ID == 0 {
		return errors.NewValidationError("cycle ID cannot be zero for update")
	}

	model := r.dataToModel(cycle)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return errors.NewDatabaseError("failed to update cycle", err)
	}

	cycle.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a cycle row
func (r *CycleRepositoryAdapter) Delete(ctx context.Context, id uint) error {
	if id == 0 {
		return errors.NewValidationError("cycle ID cannot be zero")
	}

	result := r.db.WithContext(ctx).Delete(&CycleModel{}, id)
	if result.Error != nil {
		return errors.NewDatabaseError("failed to delete cycle", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("cycle not found")
	}
	return nil
}

// FindByID retrieves a cycle by ID
func (r *CycleRepositoryAdapter) FindByID(ctx context.Context, id uint) (*ports.CycleData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("cycle ID cannot be zero")
	}

	var model CycleModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("cycle not found")
		}
		return nil, errors.NewDatabaseError("failed to find cycle by ID", err)
	}

	return r.modelToData(&model), nil
}

// FindByUser returns the user's cycles inside the filter, oldest first
func (r *CycleRepositoryAdapter) FindByUser(ctx context.Context, userID uint, filter ports.CycleFilter) ([]*ports.CycleData, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.StartFrom != nil {
		query = query.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.StartUntil != nil {
		query = query.Where("start_date <= ?", *filter.StartUntil)
	}
	if filter.StartAfter != nil {
		query = query.Where("start_date > ?", *filter.StartAfter)
	}
	if filter.StartBefore != nil {
		query = query.Where("start_date < ?", *filter.StartBefore)
	}

	var models []CycleModel
	if err := query.Order("start_date ASC").Order("id ASC").Find(&models).Error; err != nil {
		return nil, errors.NewDatabaseError("failed to find cycles", err)
	}

	return r.modelsToData(models), nil
}

// FindLatestBefore returns the user's most recent cycle starting before date
func (r *CycleRepositoryAdapter) FindLatestBefore(ctx context.Context, userID uint, date time.Time) (*ports.CycleData, error) {
	var model CycleModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_date < ?", userID, date).
		Order("start_date DESC").
		First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("no earlier cycle")
		}
		return nil, errors.NewDatabaseError("failed to find previous cycle", err)
	}

	return r.modelToData(&model), nil
}

// FindLatest returns the user's cycle with the latest start date
func (r *CycleRepositoryAdapter) FindLatest(ctx context.Context, userID uint) (*ports.CycleData, error) {
	var model CycleModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_date DESC").
		First(&model).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("no cycles recorded")
		}
		return nil, errors.NewDatabaseError("failed to find latest cycle", err)
	}

	return r.modelToData(&model), nil
}

// ListPage returns a page of the user's cycles, newest first
func (r *CycleRepositoryAdapter) ListPage(ctx context.Context, userID uint, startUntil *time.Time, offset, limit int) ([]*ports.CycleData, int64, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("user_id = ?", userID)
		if startUntil != nil {
			db = db.Where("start_date <= ?", *startUntil)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&CycleModel{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, 0, errors.NewDatabaseError("failed to count cycles", err)
	}

	var models []CycleModel
	err := r.db.WithContext(ctx).Scopes(scope).
		Order("start_date DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, errors.NewDatabaseError("failed to list cycles", err)
	}

	return r.modelsToData(models), total, nil
}

func (r *CycleRepositoryAdapter) dataToModel(data *ports.CycleData) *CycleModel {
	return &CycleModel{
		ID:                 data.ID,
		UserID:             data.UserID,
		StartDate:          data.StartDate,
		EndDate:            data.EndDate,
		PredictedStartDate: data.PredictedStartDate,
		PredictedEndDate:   data.PredictedEndDate,
		Description:        data.Description,
		CreatedAt:          data.CreatedAt,
		UpdatedAt:          data.UpdatedAt,
	}
}

func (r *CycleRepositoryAdapter) modelToData(model *CycleModel) *ports.CycleData {
	return &ports.CycleData{
		ID:                 model.ID,
		UserID:             model.UserID,
		StartDate:          model.StartDate,
		EndDate:            model.EndDate,
		PredictedStartDate: model.PredictedStartDate,
		PredictedEndDate:   model.PredictedEndDate,
		Description:        model.Description,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}
}

func (r *CycleRepositoryAdapter) modelsToData(models []CycleModel) []*ports.CycleData {
	cycles := make([]*ports.CycleData, 0, len(models))
	for i := range models {
		cycles = append(cycles, r.modelToData(&models[i]))
	}
	return cycles
}
