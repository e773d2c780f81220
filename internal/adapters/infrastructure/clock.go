package infrastructure

import "time"

// SystemClock reports wall-clock time in UTC
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
