package cycle

import (
	"encoding/json"
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
)

// PhaseType identifies one of the four physiological sub-periods of a cycle
type PhaseType int

const (
	PhaseTypeUnknown PhaseType = iota
	PhaseTypeMenstruation
	PhaseTypeFollicular
	PhaseTypeOvulation
	PhaseTypeLuteal
)

// String returns the string representation of phase type
func (p PhaseType) String() string {
	switch p {
	case PhaseTypeMenstruation:
		return "menstruation"
	case PhaseTypeFollicular:
		return "follicular"
	case PhaseTypeOvulation:
		return "ovulation"
	case PhaseTypeLuteal:
		return "luteal"
	default:
		return "unknown"
	}
}

// IsValid checks if the phase type value is valid
func (p PhaseType) IsValid() bool {
	return p >= PhaseTypeMenstruation && p <= PhaseTypeLuteal
}

// PhaseTypeFromString converts string to PhaseType enum
func PhaseTypeFromString(s string) PhaseType {
	switch s {
	case "menstruation":
		return PhaseTypeMenstruation
	case "follicular":
		return PhaseTypeFollicular
	case "ovulation":
		return PhaseTypeOvulation
	case "luteal":
		return PhaseTypeLuteal
	default:
		return PhaseTypeUnknown
	}
}

// MarshalJSON implements json.Marshaler interface
func (p PhaseType) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler interface
func (p *PhaseType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*p = PhaseTypeFromString(s)
	return nil
}

// Phase is a date window within a cycle. EndDate before StartDate marks an
// empty window, which happens for the luteal phase of very short cycles.
type Phase struct {
	ID        uint      `json:"id,omitempty"`
	Type      PhaseType `json:"type"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// IsEmpty reports whether the window holds no days
func (p Phase) IsEmpty() bool {
	return p.EndDate.Before(p.StartDate)
}

// Contains reports whether day falls within the window
func (p Phase) Contains(day time.Time) bool {
	if p.IsEmpty() {
		return false
	}
	return dateutil.BetweenInclusive(day, p.StartDate, p.EndDate)
}

// Cycle represents one menstrual cycle of a user
type Cycle struct {
	ID                 uint       `json:"id"`
	UserID             uint       `json:"user_id"`
	StartDate          time.Time  `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	PredictedStartDate time.Time  `json:"predicted_start_date"`
	PredictedEndDate   time.Time  `json:"predicted_end_date"`
	Description        string     `json:"description,omitempty"`
	Phases             []Phase    `json:"phases,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsOpen reports whether the cycle is still ongoing
func (c *Cycle) IsOpen() bool {
	return c.EndDate == nil
}

// PageMeta describes a page of a listing
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// NewPageMeta computes page counts for a listing
func NewPageMeta(total int64, page, limit int) PageMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return PageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// ListResult is a page of cycles
type ListResult struct {
	Cycles []*Cycle `json:"data"`
	Meta   PageMeta `json:"meta"`
}

func fromCycleData(data *ports.CycleData) *Cycle {
	return &Cycle{
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

func fromPhaseData(data []*ports.PhaseData) []Phase {
	phases := make([]Phase, 0, len(data))
	for _, p := range data {
		phases = append(phases, Phase{
			ID:        p.ID,
			Type:      PhaseTypeFromString(p.Type),
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}
	return phases
}

func toPhaseData(cycleID uint, phases []Phase) []*ports.PhaseData {
	rows := make([]*ports.PhaseData, 0, len(phases))
	for _, p := range phases {
		rows = append(rows, &ports.PhaseData{
			CycleID:   cycleID,
			Type:      p.Type.String(),
			StartDate: p.StartDate,
			EndDate:   p.EndDate,
		})
	}
	return rows
}
