package auction

import "time"

// Clock is the engine's time source. Each operation reads it exactly once
// at the start of its checks.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time {
	return time.Now()
}
