// Package clock lets services take the current time as a dependency.
package clock

import "time"

// Clock returns the current instant.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time { return f() }

// System is the wall clock, in UTC.
var System Clock = Func(func() time.Time { return time.Now().UTC() })

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	t = t.UTC()
	return Func(func() time.Time { return t })
}
