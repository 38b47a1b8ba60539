// services/clock.go
package services

import "time"

// Clock supplies the current time and date so streak arithmetic can be
// driven by fixed dates in tests. All values are UTC.
type Clock interface {
	Now() time.Time
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

func (systemClock) Today() time.Time {
	return Midnight(time.Now().UTC())
}

// SystemClock returns the wall clock.
func SystemClock() Clock {
	return systemClock{}
}

// Midnight truncates t to 00:00:00 UTC, the canonical form for
// activity dates.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
