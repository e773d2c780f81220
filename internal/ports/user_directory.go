package ports

import (
	"context"
	"time"
)

// UserData represents user profile data for persistence
type UserData struct {
	ID              uint
	Name            string
	Email           string
	AvgCycleLength  int
	AvgPeriodLength int
	FCMToken        string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// UserRepository defines the contract for user persistence
type UserRepository interface {
	Save(ctx context.Context, user *UserData) error
	Update(ctx context.Context, user *UserData) error
	FindByID(ctx context.Context, id uint) (*UserData, error)
	FindByEmail(ctx context.Context, email string) (*UserData, error)
	ListWithToken(ctx context.Context) ([]*UserData, error)
	// Delete removes the user together with every cycle, phase, period day,
	// irregularity and notification the user owns.
	Delete(ctx context.Context, id uint) error
}

// UserDirectory provides read-only profile lookup for the prediction engine
type UserDirectory interface {
	Get(ctx context.Context, userID uint) (*UserData, error)
}

// UserDirectoryInvalidator drops cached profile entries after writes
type UserDirectoryInvalidator interface {
	Invalidate(ctx context.Context, userID uint) error
}
