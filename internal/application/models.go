package application

import (
	"time"

	"github.com/example/batch-scheduler/internal/recurrence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

// BatchScheduleInput is the schedule section of the batch form.
type BatchScheduleInput struct {
	StartDate    time.Time
	EndDate      time.Time
	Pattern      string
	SessionCount int
	ManualDates  []time.Time
}

// BatchInput captures caller provided batch fields. StartTime and EndTime are
// the default session time range as "HH:MM" or "HH:MM:SS".
type BatchInput struct {
	Name      string
	VenueID   *string
	PartnerID *string
	Schedule  BatchScheduleInput
	StartTime string
	EndTime   string
}

// Batch represents a persisted class cohort.
type Batch struct {
	ID           string
	Name         string
	VenueID      *string
	PartnerID    *string
	Pattern      recurrence.Pattern
	StartDate    time.Time
	EndDate      time.Time
	SessionCount int
	StartTime    scheduler.TimeOfDay
	EndTime      scheduler.TimeOfDay
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is one dated occurrence of a batch. Number is the 1-based position
// in date order and is only meaningful for display.
type Session struct {
	ID        string
	BatchID   string
	Number    int
	Date      time.Time
	StartTime scheduler.TimeOfDay
	EndTime   scheduler.TimeOfDay
	Status    scheduler.Status
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RescheduleParams identifies a session and the slot it should move to.
type RescheduleParams struct {
	BatchID   string
	SessionID string
	Date      time.Time
	StartTime string
	EndTime   string
	Reason    string
}

// StatusParams marks a session as completed or cancelled.
type StatusParams struct {
	BatchID   string
	SessionID string
	Status    string
	Notes     *string
}
