package lifecycle

import (
	"time"

	"github.com/turtacn/perm-tracker/pkg/clock"
	"github.com/turtacn/perm-tracker/pkg/errors"
)

// DateLayout is the ISO calendar-date layout used for every case date.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New(errors.ErrCodeDateInvalid, "date is empty")
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrap(err, errors.ErrCodeDateInvalid, "date must use the YYYY-MM-DD format").
			WithDetail(s)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD using its UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween returns the whole number of days from a to b (negative when b is
// before a).  Both instants are first normalised to UTC midnight so daylight
// saving transitions never shift the count.  The span is counted in Unix
// seconds; a time.Duration saturates after about 292 years.
func DaysBetween(a, b time.Time) int {
	return int((midnight(b).Unix() - midnight(a).Unix()) / secondsPerDay)
}

// midnight truncates t to its UTC calendar date.  Every exported calculator
// applies it to today before comparing against a boundary.
func midnight(t time.Time) time.Time {
	return clock.Midnight(t)
}

// AddDays returns the UTC-midnight date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return clock.Midnight(t).AddDate(0, 0, n)
}

// AddDaysISO adds n days to an ISO date string.
func AddDaysISO(s string, n int) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return FormatDate(AddDays(t, n)), nil
}

// IsSunday reports whether the ISO date s falls on a Sunday.  Unparseable input
// is never a Sunday.
func IsSunday(s string) bool {
	t, err := ParseDate(s)
	if err != nil {
		return false
	}
	return t.Weekday() == time.Sunday
}

// optionalDate parses s, reporting ok=false when s is absent or malformed.
func optionalDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// earliest returns the earliest parseable date among values.
func earliest(values ...string) (time.Time, bool) {
	var out time.Time
	found := false
	for _, v := range values {
		t, ok := optionalDate(v)
		if !ok {
			continue
		}
		if !found || t.Before(out) {
			out, found = t, true
		}
	}
	return out, found
}

// latest returns the latest parseable date among values.
func latest(values ...string) (time.Time, bool) {
	var out time.Time
	found := false
	for _, v := range values {
		t, ok := optionalDate(v)
		if !ok {
			continue
		}
		if !found || t.After(out) {
			out, found = t, true
		}
	}
	return out, found
}

// intPtr returns a pointer to v; used for optional day counts in results.
func intPtr(v int) *int {
	return &v
}
