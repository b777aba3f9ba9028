package scheduler

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeOrder indicates a session whose end time is not after its start time.
	ErrTimeOrder = errors.New("scheduler: end time must be after start time")
	// ErrConflictDetected indicates the candidate overlaps another session.
	ErrConflictDetected = errors.New("scheduler: session conflict detected")
)

// Candidate is the proposed date and time range of a session being moved.
type Candidate struct {
	Date      time.Time
	StartTime TimeOfDay
	EndTime   TimeOfDay
}

// ConflictError reports the session a candidate collides with.
type ConflictError struct {
	With Session
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil {
		return ErrConflictDetected.Error()
	}
	return fmt.Sprintf("%s: overlaps session %s on %s %s-%s",
		ErrConflictDetected.Error(), e.With.ID, e.With.Date.Format(time.DateOnly), e.With.StartTime, e.With.EndTime)
}

// Is lets errors.Is match ErrConflictDetected.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflictDetected
}

// ValidateTimeRange returns ErrTimeOrder unless end is strictly after start.
func ValidateTimeRange(start, end TimeOfDay) error {
	if end <= start {
		return ErrTimeOrder
	}
	return nil
}

// Overlaps reports whether the half-open ranges [s1,e1) and [s2,e2) intersect.
// Ranges that merely touch do not overlap.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}

// FindConflict returns the first session in existing, in list order, that
// shares the candidate's calendar date and overlaps its time range. The session
// identified by excludeID is never compared, so a session moved onto its own
// slot does not conflict with itself.
func FindConflict(existing []Session, candidate Candidate, excludeID string) (Session, bool) {
	cs, ce := ordered(candidate.StartTime, candidate.EndTime)
	if cs == ce {
		return Session{}, false
	}

	for _, session := range existing {
		if excludeID != "" && session.ID == excludeID {
			continue
		}
		if !SameDate(session.Date, candidate.Date) {
			continue
		}
		ss, se := ordered(session.StartTime, session.EndTime)
		if Overlaps(cs, ce, ss, se) {
			return session, true
		}
	}

	return Session{}, false
}

// CheckConflict wraps FindConflict and returns a *ConflictError when a
// conflicting session exists.
func CheckConflict(existing []Session, candidate Candidate, excludeID string) error {
	if conflict, ok := FindConflict(existing, candidate, excludeID); ok {
		return &ConflictError{With: conflict}
	}
	return nil
}

func ordered(a, b TimeOfDay) (TimeOfDay, TimeOfDay) {
	if b < a {
		return b, a
	}
	return a, b
}
