// Package clock provides the clock abstraction used by the PERM tracker.
//
// Deadline logic never calls time.Now() directly.  Entry points (cmd/*, HTTP
// handlers) construct a Clock and thread it, or the date it reports, into the
// lifecycle engine so computations stay reproducible.
//
// Usage:
//
//	c := clock.NewFixed(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
//	today := clock.Today(c) // 2024-06-15T00:00:00Z
package clock

import "time"

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual system time.
// Use only at application entry points (cmd/*).
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns a fixed time.
type FixedClock struct {
	T time.Time
}

// Now returns the fixed time.
func (c FixedClock) Now() time.Time {
	return c.T
}

// FuncClock wraps a function as a Clock.
type FuncClock func() time.Time

// Now calls the wrapped function.
func (f FuncClock) Now() time.Time {
	return f()
}

// NewReal returns a Clock that uses the real system time.
func NewReal() Clock {
	return RealClock{}
}

// NewFixed returns a Clock that always returns t.
func NewFixed(t time.Time) Clock {
	return FixedClock{T: t}
}

// NewFunc returns a Clock backed by f.
func NewFunc(f func() time.Time) Clock {
	return FuncClock(f)
}

// Today returns the current calendar date of c as UTC midnight.  The date is
// taken in UTC so that a case evaluated late in the evening in one zone and
// early morning in another yields the same day counts.
func Today(c Clock) time.Time {
	return Midnight(c.Now())
}

// Midnight truncates t to 00:00:00 UTC of its UTC calendar date.
func Midnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

var (
	_ Clock = RealClock{}
	_ Clock = FixedClock{}
	_ Clock = FuncClock(nil)
)
