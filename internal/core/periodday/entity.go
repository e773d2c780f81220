package periodday

import (
	"encoding/json"
	"time"

	"luna.app/internal/ports"
)

// FlowLevel is the ordered bleeding intensity of a logged day
type FlowLevel int

const (
	FlowLevelUnknown FlowLevel = iota
	FlowLevelNone
	FlowLevelLight
	FlowLevelMedium
	FlowLevelHeavy
)

// String returns the string representation of flow level
func (f FlowLevel) String() string {
	switch f {
	case FlowLevelNone:
		return "none"
	case FlowLevelLight:
		return "light"
	case FlowLevelMedium:
		return "medium"
	case FlowLevelHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// IsValid checks if the flow level value is valid
func (f FlowLevel) IsValid() bool {
	return f >= FlowLevelNone && f <= FlowLevelHeavy
}

// FlowLevelFromString converts string to FlowLevel enum
func FlowLevelFromString(s string) FlowLevel {
	switch s {
	case "none":
		return FlowLevelNone
	case "light":
		return FlowLevelLight
	case "medium":
		return FlowLevelMedium
	case "heavy":
		return FlowLevelHeavy
	default:
		return FlowLevelUnknown
	}
}

// UnmarshalJSON implements json.Unmarshaler interface
func (f *FlowLevel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = FlowLevelFromString(s)
	return nil
}

// MarshalJSON implements json.Marshaler interface
func (f FlowLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// PeriodDay is one logged day of bleeding within a cycle
type PeriodDay struct {
	ID          uint      `json:"id"`
	CycleID     uint      `json:"cycle_id"`
	UserID      uint      `json:"user_id"`
	Date        time.Time `json:"date"`
	FlowLevel   FlowLevel `json:"flow_level"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func fromData(data *ports.PeriodDayData) *PeriodDay {
	return &PeriodDay{
		ID:          data.ID,
		CycleID:     data.CycleID,
		UserID:      data.UserID,
		Date:        data.Date,
		FlowLevel:   FlowLevelFromString(data.FlowLevel),
		Description: data.Description,
		CreatedAt:   data.CreatedAt,
	}
}
