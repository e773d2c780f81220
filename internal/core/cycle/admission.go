package cycle

import (
	"context"
	"fmt"
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
	"luna.app/pkg/errors"
)

// AdmissionRule names the check that rejected a candidate start date
type AdmissionRule int

const (
	AdmissionRuleNone AdmissionRule = iota
	AdmissionRuleMonthOverlap
	AdmissionRuleLookback
	AdmissionRuleLookahead
)

// String returns the string representation of admission rule
func (r AdmissionRule) String() string {
	switch r {
	case AdmissionRuleMonthOverlap:
		return "month_overlap"
	case AdmissionRuleLookback:
		return "lookback_spacing"
	case AdmissionRuleLookahead:
		return "lookahead_spacing"
	default:
		return "none"
	}
}

// AdmissionPolicy holds the tunables of the admission checks
type AdmissionPolicy struct {
	OverlapBufferDays int
	SpacingDays       int
}

// admit decides whether a cycle may start on start for userID. A rejection is
// returned as a validation error naming the conflicting dates together with
// the rule that fired; any other error is a lookup failure.
func admit(ctx context.Context, cycles ports.CycleRepository, userID uint, start time.Time, avgPeriodLength int, policy AdmissionPolicy) (AdmissionRule, error) {
	monthStart, monthEnd := dateutil.MonthBounds(start)
	sameMonth, err := cycles.FindByUser(ctx, userID, ports.CycleFilter{
		StartFrom:  &monthStart,
		StartUntil: &monthEnd,
	})
	if err != nil {
		return AdmissionRuleNone, fmt.Errorf("find cycles in month: %w", err)
	}

	for _, existing := range sameMonth {
		windowEnd := dateutil.AddDays(existing.StartDate, avgPeriodLength+policy.OverlapBufferDays)
		if dateutil.BetweenInclusive(start, existing.StartDate, windowEnd) {
			return AdmissionRuleMonthOverlap, errors.NewValidationError(fmt.Sprintf(
				"cannot create a new cycle: %s falls within the menstruation window (%s - %s) of an existing cycle this month",
				dateutil.Format(start), dateutil.Format(existing.StartDate), dateutil.Format(windowEnd)))
		}
	}

	lookbackFrom := dateutil.AddDays(start, -policy.SpacingDays)
	before, err := cycles.FindByUser(ctx, userID, ports.CycleFilter{
		StartFrom:   &lookbackFrom,
		StartBefore: &start,
	})
	if err != nil {
		return AdmissionRuleNone, fmt.Errorf("find cycles before start: %w", err)
	}
	if len(before) > 0 {
		nearest := before[len(before)-1]
		return AdmissionRuleLookback, errors.NewValidationError(fmt.Sprintf(
			"cannot create a new cycle: a cycle already started within %d days before %s (%s)",
			policy.SpacingDays, dateutil.Format(start), dateutil.Format(nearest.StartDate)))
	}

	lookaheadUntil := dateutil.AddDays(start, policy.SpacingDays)
	after, err := cycles.FindByUser(ctx, userID, ports.CycleFilter{
		StartAfter: &start,
		StartUntil: &lookaheadUntil,
	})
	if err != nil {
		return AdmissionRuleNone, fmt.Errorf("find cycles after start: %w", err)
	}
	if len(after) > 0 {
		nearest := after[0]
		return AdmissionRuleLookahead, errors.NewValidationError(fmt.Sprintf(
			"cannot create a new cycle: a cycle already starts within %d days after %s (%s)",
			policy.SpacingDays, dateutil.Format(start), dateutil.Format(nearest.StartDate)))
	}

	return AdmissionRuleNone, nil
}
