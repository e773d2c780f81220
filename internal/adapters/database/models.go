package database

import (
	"time"

	"gorm.io/gorm"
)

// UserModel represents the database model for users
type UserModel struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	Email           string `gorm:"uniqueIndex;not null"`
	AvgCycleLength  int    `gorm:"not null;default:28"`
	AvgPeriodLength int    `gorm:"not null;default:5"`
	FCMToken        string `gorm:"column:fcm_token"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (UserModel) TableName() string {
	return "users"
}

// CycleModel represents the database model for cycles
type CycleModel struct {
	ID                 uint       `gorm:"primaryKey"`
	UserID             uint       `gorm:"index:idx_cycles_user_start;not null"`
	StartDate          time.Time  `gorm:"type:date;index:idx_cycles_user_start;not null"`
	EndDate            *time.Time `gorm:"type:date"`
	PredictedStartDate time.Time  `gorm:"type:date"`
	PredictedEndDate   time.Time  `gorm:"type:date"`
	Description        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (CycleModel) TableName() string {
	return "cycles"
}

// PhaseModel represents the database model for cycle phases
type PhaseModel struct {
	ID        uint      `gorm:"primaryKey"`
	CycleID   uint      `gorm:"index;not null"`
	Type      string    `gorm:"not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
}

func (PhaseModel) TableName() string {
	return "phases"
}

// PeriodDayModel represents the database model for logged period days
type PeriodDayModel struct {
	ID          uint      `gorm:"primaryKey"`
	CycleID     uint      `gorm:"uniqueIndex:idx_period_day_cycle_date;not null"`
	UserID      uint      `gorm:"index;not null"`
	Date        time.Time `gorm:"type:date;uniqueIndex:idx_period_day_cycle_date;not null"`
	FlowLevel   string    `gorm:"not null"`
	Description string
	CreatedAt   time.Time
}

func (PeriodDayModel) TableName() string {
	return "period_days"
}

// IrregularityModel represents the database model for irregularities
type IrregularityModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	CycleID   uint   `gorm:"uniqueIndex:idx_irregularity_cycle_type;not null"`
	Type      string `gorm:"column:irregularity_type;uniqueIndex:idx_irregularity_cycle_type;not null"`
	CreatedAt time.Time
}

func (IrregularityModel) TableName() string {
	return "irregularities"
}

// NotificationModel represents the database model for the notification log
type NotificationModel struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;not null"`
	Title     string `gorm:"not null"`
	Body      string `gorm:"not null"`
	DeviceID  string
	Read      bool `gorm:"default:false"`
	CreatedAt time.Time
}

func (NotificationModel) TableName() string {
	return "notifications"
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&UserModel{},
		&CycleModel{},
		&PhaseModel{},
		&PeriodDayModel{},
		&IrregularityModel{},
		&NotificationModel{},
	)
}
