package cycle

import (
	"time"

	"luna.app/pkg/dateutil"
)

const (
	follicularEndOffset = 12
	ovulationOffset     = 13
	lutealStartOffset   = 14
)

// ProjectPhases computes the four phase windows of a cycle starting at start.
// Offsets are whole days from start, inclusive:
//
//	menstruation [0, period-1]
//	follicular   [period, 12]
//	ovulation    [13, 13]
//	luteal       [14, cycleLength-1]
//
// A cycle length of 14 or less yields an empty luteal window.
func ProjectPhases(start time.Time, avgCycleLength, avgPeriodLength int) []Phase {
	window := func(t PhaseType, from, to int) Phase {
		return Phase{
			Type:      t,
			StartDate: dateutil.AddDays(start, from),
			EndDate:   dateutil.AddDays(start, to),
		}
	}

	return []Phase{
		window(PhaseTypeMenstruation, 0, avgPeriodLength-1),
		window(PhaseTypeFollicular, avgPeriodLength, follicularEndOffset),
		window(PhaseTypeOvulation, ovulationOffset, ovulationOffset),
		window(PhaseTypeLuteal, lutealStartOffset, avgCycleLength-1),
	}
}

// PhaseOn returns the phase containing day, if any
func PhaseOn(phases []Phase, day time.Time) (Phase, bool) {
	for _, p := range phases {
		if p.Contains(day) {
			return p, true
		}
	}
	return Phase{}, false
}
