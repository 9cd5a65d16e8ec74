// Package clock lets services take the current time from an injected source.
package clock

import "time"

// Clock mocks out time.Now for testing.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// System returns a clock backed by time.Now.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant.
type Fixed time.Time

// Now returns the fixed time.
func (f Fixed) Now() time.Time {
	return time.Time(f)
}
