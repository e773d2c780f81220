// Package dateutil holds the calendar-day arithmetic used by cycle predictions.
// All helpers work on whole days; time-of-day is dropped before any comparison.
package dateutil

import "time"

// Layout is the wire format for calendar dates.
const Layout = "2006-01-02"

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UTCDate returns the calendar date of t as midnight UTC.
func UTCDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayDifference returns b - a in whole calendar days.
func DayDifference(a, b time.Time) int {
	return int(UTCDate(b).Sub(UTCDate(a)).Hours() / 24)
}

// AddDays offsets t by n calendar days without timezone conversion.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// MonthBounds returns the first and last day of the month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return first, first.AddDate(0, 1, -1)
}

// BetweenInclusive reports whether day lies in [start, end] by calendar date.
func BetweenInclusive(day, start, end time.Time) bool {
	d := UTCDate(day)
	return !d.Before(UTCDate(start)) && !d.After(UTCDate(end))
}

// Parse reads a YYYY-MM-DD string as a UTC calendar date.
func Parse(value string) (time.Time, error) {
	return time.ParseInLocation(Layout, value, time.UTC)
}

// Format renders t as YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format(Layout)
}
