package irregularity

import (
	"encoding/json"
	"time"

	"luna.app/internal/ports"
)

// Type classifies a deviation from the expected cycle pattern
type Type int

const (
	TypeUnknown Type = iota
	TypeShortCycle
	TypeLongCycle
	TypeMissedPeriod
	TypeHeavyFlow
	TypeLightFlow
	TypeOther
)

// String returns the string representation of irregularity type
func (t Type) String() string {
	switch t {
	case TypeShortCycle:
		return "short_cycle"
	case TypeLongCycle:
		return "long_cycle"
	case TypeMissedPeriod:
		return "missed_period"
	case TypeHeavyFlow:
		return "heavy_flow"
	case TypeLightFlow:
		return "light_flow"
	case TypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// IsValid checks if the irregularity type is valid
func (t Type) IsValid() bool {
	return t >= TypeShortCycle && t <= TypeOther
}

// TypeFromString converts string to Type enum
func TypeFromString(s string) Type {
	switch s {
	case "short_cycle":
		return TypeShortCycle
	case "long_cycle":
		return TypeLongCycle
	case "missed_period":
		return TypeMissedPeriod
	case "heavy_flow":
		return TypeHeavyFlow
	case "light_flow":
		return TypeLightFlow
	case "other":
		return TypeOther
	default:
		return TypeUnknown
	}
}

// Label is the human-readable name used in alerts
func (t Type) Label() string {
	switch t {
	case TypeShortCycle:
		return "Short cycle"
	case TypeLongCycle:
		return "Long cycle"
	case TypeMissedPeriod:
		return "Missed period"
	case TypeHeavyFlow:
		return "Heavy flow"
	case TypeLightFlow:
		return "Light flow"
	default:
		return "Irregular cycle"
	}
}

// MarshalJSON implements json.Marshaler interface
func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler interface
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = TypeFromString(s)
	return nil
}

// Irregularity is a recorded classification of one cycle
type Irregularity struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	CycleID   uint      `json:"cycle_id"`
	Type      Type      `json:"irregularity_type"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResult is a page of irregularities
type ListResult struct {
	Irregularities []*Irregularity `json:"data"`
	Total          int64           `json:"total"`
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
}

// FromData converts a persisted row into an Irregularity
func FromData(data *ports.IrregularityData) *Irregularity {
	return &Irregularity{
		ID:        data.ID,
		UserID:    data.UserID,
		CycleID:   data.CycleID,
		Type:      TypeFromString(data.Type),
		CreatedAt: data.CreatedAt,
	}
}
