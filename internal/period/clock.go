package period

import "time"

// Clock abstracts "now" so period keys can be computed against fixed instants in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local machine clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().Local()
}

// FixedClock always returns the same instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}
