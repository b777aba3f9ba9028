package scheduler

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status describes the lifecycle state of a session.
type Status string

const (
	// StatusScheduled is the initial state of a generated session.
	StatusScheduled Status = "scheduled"
	// StatusCompleted marks a session that took place.
	StatusCompleted Status = "completed"
	// StatusCancelled marks a session that will not take place.
	StatusCancelled Status = "cancelled"
	// StatusRescheduled marks a session moved to a new date or time.
	StatusRescheduled Status = "rescheduled"
)

// ErrInvalidStatus indicates an unknown session status token.
var ErrInvalidStatus = errors.New("scheduler: invalid session status")

// ParseStatus converts a raw token into a Status.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return s, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
}

// Terminal reports whether the status forbids further changes.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Reschedulable reports whether a session in this status may be moved.
func (s Status) Reschedulable() bool {
	return !s.Terminal()
}

// TimeOfDay is a local wall clock time with minute precision, stored as
// minutes after midnight.
type TimeOfDay int

// ErrInvalidTime indicates a time-of-day value that cannot be parsed.
var ErrInvalidTime = errors.New("scheduler: invalid time of day")

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS". Seconds are dropped so both
// spellings of the same minute compare equal.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
	}

	limits := []int{23, 59, 59}
	values := make([]int, len(parts))
	for i, part := range parts {
		if len(part) != 2 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
		}
		v, err := strconv.Atoi(part)
		if err != nil || v < 0 || v > limits[i] {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTime, raw)
		}
		values[i] = v
	}

	return TimeOfDay(values[0]*60 + values[1]), nil
}

// MustParseTimeOfDay is like ParseTimeOfDay but panics on malformed input.
func MustParseTimeOfDay(raw string) TimeOfDay {
	t, err := ParseTimeOfDay(raw)
	if err != nil {
		panic(err)
	}
	return t
}

// Hour returns the hour component.
func (t TimeOfDay) Hour() int { return int(t) / 60 }

// Minute returns the minute component.
func (t TimeOfDay) Minute() int { return int(t) % 60 }

// String formats the value as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// On combines the time of day with the calendar date of d in loc.
func (t TimeOfDay) On(d time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, dd := d.Date()
	return time.Date(y, m, dd, t.Hour(), t.Minute(), 0, 0, loc)
}

// Session is one scheduled occurrence of a batch.
type Session struct {
	ID        string
	Date      time.Time
	StartTime TimeOfDay
	EndTime   TimeOfDay
	Status    Status
	Notes     string
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
