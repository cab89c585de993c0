package engine

import "time"

// TimeSource supplies the current time to the eligibility guards.
// Injected so tests and the scenario harness can pin the clock; production
// uses WallClock.
type TimeSource interface {
	Now() time.Time
}

// WallClock is the production time source.
type WallClock struct{}

// Now returns the current wall-clock time.
func (WallClock) Now() time.Time {
	return time.Now()
}
