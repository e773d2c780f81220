package cycle

import (
	"math"
	"time"

	"luna.app/pkg/dateutil"
)

// Prediction holds the forecast window for a cycle
type Prediction struct {
	Length    int
	StartDate time.Time
	EndDate   time.Time
}

// PredictLength returns the rounded mean gap between consecutive prior start
// dates, or fallback when fewer than two are known. priorStarts must be
// ordered ascending. The mean covers the whole history.
func PredictLength(priorStarts []time.Time, fallback int) int {
	if len(priorStarts) < 2 {
		return fallback
	}

	total := 0
	for i := 1; i < len(priorStarts); i++ {
		total += dateutil.DayDifference(priorStarts[i-1], priorStarts[i])
	}
	mean := float64(total) / float64(len(priorStarts)-1)

	// halves round up: 27.5 -> 28
	return int(math.Floor(mean + 0.5))
}

// Predict forecasts the window of a cycle beginning at start
func Predict(start time.Time, priorStarts []time.Time, fallback int) Prediction {
	length := PredictLength(priorStarts, fallback)
	return Prediction{
		Length:    length,
		StartDate: start,
		EndDate:   dateutil.AddDays(start, length-1),
	}
}
