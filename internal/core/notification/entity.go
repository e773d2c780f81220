package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"luna.app/internal/core/cycle"
	"luna.app/internal/core/irregularity"
	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
)

// Trigger identifies why an evaluation runs
type Trigger int

const (
	TriggerUnknown Trigger = iota
	TriggerCycleMutation
	TriggerDailyCheck
)

// String returns the string representation of trigger
func (t Trigger) String() string {
	switch t {
	case TriggerCycleMutation:
		return "cycle_mutation"
	case TriggerDailyCheck:
		return "daily_check"
	default:
		return "unknown"
	}
}

// Kind tags a notification variant
type Kind int

const (
	KindUnknown Kind = iota
	KindPhase
	KindPeriodApproaching
	KindPeriodLate
	KindIrregularity
)

// String returns the string representation of kind
func (k Kind) String() string {
	switch k {
	case KindPhase:
		return "phase"
	case KindPeriodApproaching:
		return "period_approaching"
	case KindPeriodLate:
		return "late_period"
	case KindIrregularity:
		return "irregularity"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler interface
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// KindFromString converts string to Kind enum
func KindFromString(s string) Kind {
	switch s {
	case "phase":
		return KindPhase
	case "period_approaching":
		return KindPeriodApproaching
	case "late_period":
		return KindPeriodLate
	case "irregularity":
		return KindIrregularity
	default:
		return KindUnknown
	}
}

// UnmarshalJSON implements json.Unmarshaler interface
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*k = KindFromString(s)
	return nil
}

// Message is the rendered title and body of a notification
type Message struct {
	Title string
	Body  string
}

// Candidate is one notification the evaluator may send. The set of
// implementations is closed; each renders itself.
type Candidate interface {
	Kind() Kind
	Message() Message
	candidate()
}

// PhaseUpdate announces the phase containing today
type PhaseUpdate struct {
	Phase      cycle.PhaseType
	DayOfPhase int
}

// PeriodApproaching announces the next expected period
type PeriodApproaching struct {
	DaysUntil     int
	ExpectedStart time.Time
}

// PeriodLate warns that the expected period has not started
type PeriodLate struct {
	DaysLate      int
	ExpectedStart time.Time
}

// IrregularityAlert reports a recently detected irregularity
type IrregularityAlert struct {
	Type           irregularity.Type
	CycleID        uint
	CycleStartDate *time.Time
}

func (PhaseUpdate) Kind() Kind       { return KindPhase }
func (PeriodApproaching) Kind() Kind { return KindPeriodApproaching }
func (PeriodLate) Kind() Kind        { return KindPeriodLate }
func (IrregularityAlert) Kind() Kind { return KindIrregularity }

func (PhaseUpdate) candidate()       {}
func (PeriodApproaching) candidate() {}
func (PeriodLate) candidate()        {}
func (IrregularityAlert) candidate() {}

func (c PhaseUpdate) Message() Message {
	var body string
	switch c.Phase {
	case cycle.PhaseTypeMenstruation:
		body = fmt.Sprintf("Day %d of your period. Rest, stay hydrated and keep warm if you have cramps.", c.DayOfPhase)
	case cycle.PhaseTypeFollicular:
		body = "Your energy is rising in the follicular phase. A good time for new plans and workouts."
	case cycle.PhaseTypeOvulation:
		body = "You are in your ovulation window today. This is your most fertile time of the cycle."
	case cycle.PhaseTypeLuteal:
		body = fmt.Sprintf("Day %d of your luteal phase. Mood changes and cravings are common now.", c.DayOfPhase)
	default:
		body = "Your cycle phase has changed."
	}
	return Message{
		Title: fmt.Sprintf("Cycle update: %s phase", titleCase(c.Phase.String())),
		Body:  body,
	}
}

func (c PeriodApproaching) Message() Message {
	return Message{
		Title: "Period approaching",
		Body: fmt.Sprintf("Your next period is expected in %d %s, around %s.",
			c.DaysUntil, plural(c.DaysUntil, "day", "days"), dateutil.Format(c.ExpectedStart)),
	}
}

func (c PeriodLate) Message() Message {
	return Message{
		Title: "Period is late",
		Body: fmt.Sprintf("Your period is %d %s late. It was expected on %s.",
			c.DaysLate, plural(c.DaysLate, "day", "days"), dateutil.Format(c.ExpectedStart)),
	}
}

func (c IrregularityAlert) Message() Message {
	body := fmt.Sprintf("%s detected in cycle #%d.", c.Type.Label(), c.CycleID)
	if c.CycleStartDate != nil {
		body = fmt.Sprintf("%s detected in cycle #%d that started on %s.",
			c.Type.Label(), c.CycleID, dateutil.Format(*c.CycleStartDate))
	}
	return Message{
		Title: fmt.Sprintf("Irregularity detected: %s", c.Type.Label()),
		Body:  body,
	}
}

// Result is the outcome of one candidate
type Result struct {
	Kind    Kind   `json:"type"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Sent    bool   `json:"sent"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Report summarizes an evaluation. It is returned instead of an error.
type Report struct {
	RequestID     string   `json:"request_id"`
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	Notifications []Result `json:"notifications"`
}

// SentCount returns how many notifications were delivered
func (r Report) SentCount() int {
	n := 0
	for _, res := range r.Notifications {
		if res.Sent {
			n++
		}
	}
	return n
}

// Notification is a logged notification
type Notification struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	DeviceID  string    `json:"device_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResult is a page of logged notifications
type ListResult struct {
	Notifications []*Notification `json:"data"`
	Total         int64           `json:"total"`
	Page          int             `json:"page"`
	Limit         int             `json:"limit"`
}

// DailySummary aggregates a daily check over all users
type DailySummary struct {
	Users  int `json:"users"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func fromNotificationData(data *ports.NotificationData) *Notification {
	return &Notification{
		ID:        data.ID,
		UserID:    data.UserID,
		Title:     data.Title,
		Body:      data.Body,
		DeviceID:  data.DeviceID,
		Read:      data.Read,
		CreatedAt: data.CreatedAt,
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
