package ports

import (
	"context"
	"time"
)

// CycleData represents cycle data for persistence
type CycleData struct {
	ID                 uint
	UserID             uint
	StartDate          time.Time
	EndDate            *time.Time
	PredictedStartDate time.Time
	PredictedEndDate   time.Time
	Description        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PhaseData represents a persisted phase window
type PhaseData struct {
	ID        uint
	CycleID   uint
	Type      string
	StartDate time.Time
	EndDate   time.Time
}

// PeriodDayData represents a logged period day
type PeriodDayData struct {
	ID          uint
	CycleID     uint
	UserID      uint
	Date        time.Time
	FlowLevel   string
	Description string
	CreatedAt   time.Time
}

// IrregularityData represents a recorded irregularity
type IrregularityData struct {
	ID        uint
	UserID    uint
	CycleID   uint
	Type      string
	CreatedAt time.Time
}

// NotificationData represents a dispatched notification
type NotificationData struct {
	ID        uint
	UserID    uint
	Title     string
	Body      string
	DeviceID  string
	Read      bool
	CreatedAt time.Time
}

// CycleFilter bounds a start_date range query. Nil bounds are open.
type CycleFilter struct {
	StartFrom   *time.Time // start_date >= StartFrom
	StartUntil  *time.Time // start_date <= StartUntil
	StartAfter  *time.Time // start_date > StartAfter
	StartBefore *time.Time // start_date < StartBefore
}

// CycleRepository defines the contract for cycle persistence
type CycleRepository interface {
	Create(ctx context.Context, cycle *CycleData) error
	Update(ctx context.Context, cycle *CycleData) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*CycleData, error)
	// FindByUser returns the user's cycles ordered by start_date ascending.
	FindByUser(ctx context.Context, userID uint, filter CycleFilter) ([]*CycleData, error)
	FindLatestBefore(ctx context.Context, userID uint, date time.Time) (*CycleData, error)
	FindLatest(ctx context.Context, userID uint) (*CycleData, error)
	// ListPage returns cycles newest first together with the user's total count.
	ListPage(ctx context.Context, userID uint, startUntil *time.Time, offset, limit int) ([]*CycleData, int64, error)
}

// PhaseRepository defines the contract for phase persistence
type PhaseRepository interface {
	DeleteByCycle(ctx context.Context, cycleID uint) error
	CreateMany(ctx context.Context, phases []*PhaseData) error
	FindByCycle(ctx context.Context, cycleID uint) ([]*PhaseData, error)
}

// PeriodDayRepository defines the contract for period day persistence
type PeriodDayRepository interface {
	Create(ctx context.Context, day *PeriodDayData) error
	FindByID(ctx context.Context, id uint) (*PeriodDayData, error)
	// FindByCycleAndDate returns a NotFound error when no day is logged on date.
	FindByCycleAndDate(ctx context.Context, cycleID uint, date time.Time) (*PeriodDayData, error)
	FindByUser(ctx context.Context, userID uint, cycleID *uint) ([]*PeriodDayData, error)
	Update(ctx context.Context, day *PeriodDayData) error
	Delete(ctx context.Context, id uint) error
	CountByCycle(ctx context.Context, cycleID uint) (int64, error)
}

// IrregularityRepository defines the contract for irregularity persistence
type IrregularityRepository interface {
	ExistsFor(ctx context.Context, cycleID uint, irregularityType string) (bool, error)
	Create(ctx context.Context, irregularity *IrregularityData) error
	FindRecentByUser(ctx context.Context, userID uint, since time.Time) ([]*IrregularityData, error)
	FindByUser(ctx context.Context, userID uint, offset, limit int) ([]*IrregularityData, int64, error)
	FindByID(ctx context.Context, id uint) (*IrregularityData, error)
	Delete(ctx context.Context, id uint) error
}

// NotificationRepository defines the contract for the notification log
type NotificationRepository interface {
	// FindRecent returns the newest notification whose title contains titlePattern
	// and was created at or after since. Absent rows yield a NotFound error.
	FindRecent(ctx context.Context, userID uint, titlePattern string, since time.Time) (*NotificationData, error)
	FindRecentByBody(ctx context.Context, userID uint, bodyPattern string, since time.Time) (*NotificationData, error)
	Create(ctx context.Context, notification *NotificationData) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*NotificationData, int64, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

// Store groups the repositories the core writes through
type Store interface {
	Cycles() CycleRepository
	Phases() PhaseRepository
	PeriodDays() PeriodDayRepository
	Irregularities() IrregularityRepository
	Notifications() NotificationRepository
	// WithinUserTransaction runs fn in one transaction serialized per user.
	WithinUserTransaction(ctx context.Context, userID uint, fn func(tx Store) error) error
}
