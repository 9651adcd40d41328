package domain

import (
	"fmt"
	"time"
)

// DateFormat is the wire and storage format for calendar dates.
const DateFormat = "2006-01-02"

// TimeOfDay is a wall-clock time in "15:04" form. The fixed width makes
// lexicographic comparison agree with chronological order, so values can be
// compared and used as map keys directly.
type TimeOfDay string

// ParseTimeOfDay validates s as an HH:MM wall-clock time.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	if _, err := time.Parse("15:04", s); err != nil {
		return "", fmt.Errorf("%w: time %q is not HH:MM", ErrInvalidInput, s)
	}
	return TimeOfDay(s), nil
}

// On anchors the wall-clock time to the given date's year, month, and day.
func (t TimeOfDay) On(date time.Time) time.Time {
	parsed, err := time.Parse("15:04", string(t))
	if err != nil {
		return time.Time{}
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, date.Location())
}

func (t TimeOfDay) Before(other TimeOfDay) bool { return t < other }

// DateOnly truncates t to midnight UTC. All calendar dates flowing through the
// engine are normalized this way so equality and day arithmetic are exact.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b. Both are expected to be
// DateOnly-normalized; the result is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a) / (24 * time.Hour))
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
