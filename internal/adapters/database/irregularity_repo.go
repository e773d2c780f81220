package database

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// IrregularityRepositoryAdapter implements the IrregularityRepository port using GORM
type IrregularityRepositoryAdapter struct {
	db *gorm.DB
}

// NewIrregularityRepositoryAdapter creates a new irregularity repository adapter
func NewIrregularityRepositoryAdapter(db *gorm.DB) ports.IrregularityRepository {
	return &IrregularityRepositoryAdapter{db: db}
}

// ExistsFor reports whether the cycle already carries the classification
func (r *IrregularityRepositoryAdapter) ExistsFor(ctx context.Context, cycleID uint, irregularityType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&IrregularityModel{}).
		Where("cycle_id = ? AND irregularity_type = ?", cycleID, irregularityType).
		Count(&count).Error
	if err != nil {
		return false, errors.NewDatabaseError("failed to check irregularity", err)
	}
	return count > 0, nil
}

// Create persists an irregularity
func (r *IrregularityRepositoryAdapter) Create(ctx context.Context, irregularity *ports.IrregularityData) error {
	if irregularity == nil {
		return errors.NewValidationError("irregularity cannot be nil")
	}

	model := &IrregularityModel{
		UserID:    irregularity.UserID,
		CycleID:   irregularity.CycleID,
		Type:      irregularity.Type,
		CreatedAt: irregularity.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.NewDatabaseError("failed to create irregularity", err)
	}

	irregularity.ID = model.ID
	irregularity.CreatedAt = model.CreatedAt
	return nil
}

// FindRecentByUser returns irregularities created at or after since, oldest first
func (r *IrregularityRepositoryAdapter) FindRecentByUser(ctx context.Context, userID uint, since time.Time) ([]*ports.IrregularityData, error) {
	var models []IrregularityModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to find recent irregularities", err)
	}
	return irregularityModelsToData(models), nil
}

// FindByUser returns a page of the user's irregularities, newest first
func (r *IrregularityRepositoryAdapter) FindByUser(ctx context.Context, userID uint, offset, limit int) ([]*ports.IrregularityData, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&IrregularityModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, errors.NewDatabaseError("failed to count irregularities", err)
	}

	var models []IrregularityModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, errors.NewDatabaseError("failed to list irregularities", err)
	}
	return irregularityModelsToData(models), total, nil
}

// FindByID retrieves an irregularity by ID
func (r *IrregularityRepositoryAdapter) FindByID(ctx context.Context, id uint) (*ports.IrregularityData, error) {
	if id == 0 {
		return nil, errors.NewValidationError("irregularity ID cannot be zero")
	}

	var model IrregularityModel
	if err := r.db.WithContext(ctx).First(&model, id).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("irregularity not found")
		}
		return nil, errors.NewDatabaseError("failed to find irregularity", err)
	}
	return irregularityModelsToData([]IrregularityModel{model})[0], nil
}

// Delete removes an irregularity
func (r *IrregularityRepositoryAdapter) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&IrregularityModel{}, id)
	if result.Error != nil {
		return errors.NewDatabaseError("failed to delete irregularity", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("irregularity not found")
	}
	return nil
}

func irregularityModelsToData(models []IrregularityModel) []*ports.IrregularityData {
	rows := make([]*ports.IrregularityData, 0, len(models))
	for _, m := range models {
		rows = append(rows, &ports.IrregularityData{
			ID:        m.ID,
			UserID:    m.UserID,
			CycleID:   m.CycleID,
			Type:      m.Type,
			CreatedAt: m.CreatedAt,
		})
	}
	return rows
}
