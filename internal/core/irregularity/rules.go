package irregularity

import (
	"time"

	"luna.app/internal/ports"
	"luna.app/pkg/dateutil"
)

// Thresholds are the day counts the rules compare against
type Thresholds struct {
	ShortCycleDays    int
	LongCycleDays     int
	MissedPeriodDays  int
	HeavyFlowDays     int
	LightFlowDays     int
	FlowChecksEnabled bool
}

// ThresholdsFromConfig copies the rule limits out of the cycle config
func ThresholdsFromConfig(cfg ports.CycleConfig) Thresholds {
	return Thresholds{
		ShortCycleDays:    cfg.ShortCycleDays,
		LongCycleDays:     cfg.LongCycleDays,
		MissedPeriodDays:  cfg.MissedPeriodDays,
		HeavyFlowDays:     cfg.HeavyFlowDays,
		LightFlowDays:     cfg.LightFlowDays,
		FlowChecksEnabled: cfg.FlowChecksEnabled,
	}
}

// Facts is what the rules need to know about a cycle
type Facts struct {
	StartDate      time.Time
	EndDate        *time.Time
	PeriodDayCount int64
}

// Classify applies every rule to the cycle and returns the types that fire.
// Length rules need a closed cycle, the missed period rule an open one.
// Flow rules only run for closed cycles when enabled.
func Classify(facts Facts, asOf time.Time, th Thresholds) []Type {
	var found []Type

	if facts.EndDate != nil {
		length := dateutil.DayDifference(facts.StartDate, *facts.EndDate)
		if length < th.ShortCycleDays {
			found = append(found, TypeShortCycle)
		} else if length > th.LongCycleDays {
			found = append(found, TypeLongCycle)
		}

		if th.FlowChecksEnabled {
			if facts.PeriodDayCount > int64(th.HeavyFlowDays) {
				found = append(found, TypeHeavyFlow)
			} else if facts.PeriodDayCount < int64(th.LightFlowDays) {
				found = append(found, TypeLightFlow)
			}
		}
		return found
	}

	if dateutil.DayDifference(facts.StartDate, asOf) > th.MissedPeriodDays {
		found = append(found, TypeMissedPeriod)
	}
	return found
}
