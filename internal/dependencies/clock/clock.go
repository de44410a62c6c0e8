package clock

import "time"

// Clock is the time source for token issuance and expiry checks
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// New creates a SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
