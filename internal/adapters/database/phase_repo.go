package database

import (
	"context"

	"gorm.io/gorm"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// PhaseRepositoryAdapter implements the PhaseRepository port using GORM
type PhaseRepositoryAdapter struct {
	db *gorm.DB
}

// NewPhaseRepositoryAdapter creates a new phase repository adapter
func NewPhaseRepositoryAdapter(db *gorm.DB) ports.PhaseRepository {
	return &PhaseRepositoryAdapter{db: db}
}

// DeleteByCycle removes every phase of a cycle
func (r *PhaseRepositoryAdapter) DeleteByCycle(ctx context.Context, cycleID uint) error {
	if err := r.db.WithContext(ctx).Where("cycle_id = ?", cycleID).Delete(&PhaseModel{}).Error; err != nil {
		return errors.NewDatabaseError("failed to delete phases", err)
	}
	return nil
}

// CreateMany inserts phases in one batch and assigns their IDs
func (r *PhaseRepositoryAdapter) CreateMany(ctx context.Context, phases []*ports.PhaseData) error {
	if len(phases) == 0 {
		return nil
	}

	models := make([]PhaseModel, 0, len(phases))
	for _, p := range phases {
		models = append(models, PhaseModel{
			CycleID:   p.CycleID,
			Type:      p.Type,
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}

	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return errors.NewDatabaseError("failed to create phases", err)
	}

	for i := range models {
		phases[i].ID = models[i].ID
	}
	return nil
}

// FindByCycle returns the phases of a cycle in chronological order
func (r *PhaseRepositoryAdapter) FindByCycle(ctx context.Context, cycleID uint) ([]*ports.PhaseData, error) {
	var models []PhaseModel
	err := r.db.WithContext(ctx).
		Where("cycle_id = ?", cycleID).
		Order("start_date ASC").Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, errors.NewDatabaseError("failed to find phases", err)
	}

	phases := make([]*ports.PhaseData, 0, len(models))
	for _, m := range models {
		phases = append(phases, &ports.PhaseData{
			ID:        m.ID,
			CycleID:   m.CycleID,
			Type:      m.Type,
			StartDate: m.StartDate,
			EndDate:   m.EndDate,
		})
	}
	return phases, nil
}
