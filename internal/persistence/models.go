package persistence

import "time"

// Batch represents a class cohort and the schedule configuration it was
// generated from.
type Batch struct {
	ID           string
	Name         string
	VenueID      *string
	PartnerID    *string
	Pattern      string
	StartDate    time.Time
	EndDate      time.Time
	SessionCount int
	StartTime    string
	EndTime      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session represents one stored occurrence of a batch. Dates are calendar
// dates; times are wall clock strings as "HH:MM:SS".
type Session struct {
	ID        string
	BatchID   string
	Date      time.Time
	StartTime string
	EndTime   string
	Status    string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
