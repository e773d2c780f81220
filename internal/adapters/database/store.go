package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"luna.app/internal/ports"
	"luna.app/pkg/errors"
)

// StoreAdapter implements the Store port on one GORM handle, which is either
// the root connection or an open transaction.
type StoreAdapter struct {
	db             *gorm.DB
	cycles         ports.CycleRepository
	phases         ports.PhaseRepository
	periodDays     ports.PeriodDayRepository
	irregularities ports.IrregularityRepository
	notifications  ports.NotificationRepository
}

// NewStoreAdapter creates a store bound to db
func NewStoreAdapter(db *gorm.DB) *StoreAdapter {
	return &StoreAdapter{
		db:             db,
		cycles:         NewCycleRepositoryAdapter(db),
		phases:         NewPhaseRepositoryAdapter(db),
		periodDays:     NewPeriodDayRepositoryAdapter(db),
		irregularities: NewIrregularityRepositoryAdapter(db),
		notifications:  NewNotificationRepositoryAdapter(db),
	}
}

func (s *StoreAdapter) Cycles() ports.CycleRepository                { return s.cycles }
func (s *StoreAdapter) Phases() ports.PhaseRepository                { return s.phases }
func (s *StoreAdapter) PeriodDays() ports.PeriodDayRepository        { return s.periodDays }
func (s *StoreAdapter) Irregularities() ports.IrregularityRepository { return s.irregularities }
func (s *StoreAdapter) Notifications() ports.NotificationRepository  { return s.notifications }

// WithinUserTransaction runs fn inside a transaction. On PostgreSQL the user
// row is locked first so concurrent writers for the same user queue up;
// SQLite serializes writers on its own.
func (s *StoreAdapter) WithinUserTransaction(ctx context.Context, userID uint, fn func(tx ports.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			var locked []UserModel
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				Where("id = ?", userID).
				Find(&locked).Error
			if err != nil {
				return errors.NewDatabaseError("failed to lock user", err)
			}
		}
		return fn(NewStoreAdapter(tx))
	})
}

// Ping checks the underlying connection
func (s *StoreAdapter) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.NewDatabaseError("failed to get database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.NewDatabaseError("database ping failed", err)
	}
	return nil
}
