package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

var clock = clockwork.NewRealClock()

// SetClock replaces the source of snapshot receive times and notice
// timestamps. nil restores the wall clock.
func SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	clock = c
}

// Now reads the package clock in UTC, without a monotonic reading so stamped
// values compare and serialize cleanly.
func Now() time.Time {
	return clock.Now().UTC().Round(0)
}
