package spacedrep

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T. Used in tests and for backdated reviews.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }
