package user

import (
	"time"

	"luna.app/internal/ports"
)

const (
	MinCycleLength  = 1
	MaxCycleLength  = 90
	MinPeriodLength = 1
	MaxPeriodLength = 30
)

// User is a registered person tracking cycles
type User struct {
	ID              uint      `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	AvgCycleLength  int       `json:"avg_cycle_length"`
	AvgPeriodLength int       `json:"avg_period_length"`
	HasPushToken    bool      `json:"has_push_token"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func fromData(data *ports.UserData) *User {
	return &User{
		ID:              data.ID,
		Name:            data.Name,
		Email:           data.Email,
		AvgCycleLength:  data.AvgCycleLength,
		AvgPeriodLength: data.AvgPeriodLength,
		HasPushToken:    data.FCMToken != "",
		CreatedAt:       data.CreatedAt,
		UpdatedAt:       data.UpdatedAt,
	}
}
