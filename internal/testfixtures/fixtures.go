package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/persistence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

var (
	batchCounter   uint64
	sessionCounter uint64
)

// Date returns midnight UTC on the given day of 2025.
func Date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
}

// ----------------------------- Batch fixtures -----------------------------

// BatchFixture represents a deterministic batch that can be materialised as
// service input or as a stored record.
type BatchFixture struct {
	ID           string
	Name         string
	VenueID      *string
	PartnerID    *string
	Pattern      string
	StartDate    time.Time
	EndDate      time.Time
	SessionCount int
	ManualDates  []time.Time
	StartTime    string
	EndTime      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BatchOption configures the generated batch fixture.
type BatchOption func(*BatchFixture)

// NewBatchFixture returns a Monday, Wednesday and Friday batch running from
// 1 to 10 April 2025, 09:00 to 10:30.
func NewBatchFixture(opts ...BatchOption) BatchFixture {
	idx := atomic.AddUint64(&batchCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	venue := fmt.Sprintf("venue-%03d", idx)
	fixture := BatchFixture{
		ID:        fmt.Sprintf("batch-%03d", idx),
		Name:      fmt.Sprintf("Cohort %03d", idx),
		VenueID:   &venue,
		Pattern:   "MWF",
		StartDate: Date(time.April, 1),
		EndDate:   Date(time.April, 10),
		StartTime: "09:00",
		EndTime:   "10:30",
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithBatchID overrides the generated batch ID.
func WithBatchID(id string) BatchOption {
	return func(f *BatchFixture) {
		f.ID = id
	}
}

// WithBatchName overrides the generated name.
func WithBatchName(name string) BatchOption {
	return func(f *BatchFixture) {
		f.Name = name
	}
}

// WithBatchPattern overrides the schedule pattern token.
func WithBatchPattern(pattern string) BatchOption {
	return func(f *BatchFixture) {
		f.Pattern = pattern
	}
}

// WithBatchRange overrides the inclusive date range.
func WithBatchRange(start, end time.Time) BatchOption {
	return func(f *BatchFixture) {
		f.StartDate = start
		f.EndDate = end
	}
}

// WithManualDates switches the batch to a manual schedule of the given dates
// and sets the session count to match.
func WithManualDates(dates ...time.Time) BatchOption {
	return func(f *BatchFixture) {
		f.Pattern = "manual"
		f.ManualDates = append([]time.Time(nil), dates...)
		f.SessionCount = len(dates)
	}
}

// WithBatchTimes overrides the default session time range.
func WithBatchTimes(start, end string) BatchOption {
	return func(f *BatchFixture) {
		f.StartTime = start
		f.EndTime = end
	}
}

// WithoutVenue clears the venue reference.
func WithoutVenue() BatchOption {
	return func(f *BatchFixture) {
		f.VenueID = nil
	}
}

// Input converts the fixture into the service create/update payload.
func (f BatchFixture) Input() application.BatchInput {
	return application.BatchInput{
		Name:      f.Name,
		VenueID:   cloneStringPtr(f.VenueID),
		PartnerID: cloneStringPtr(f.PartnerID),
		Schedule: application.BatchScheduleInput{
			StartDate:    f.StartDate,
			EndDate:      f.EndDate,
			Pattern:      f.Pattern,
			SessionCount: f.SessionCount,
			ManualDates:  append([]time.Time(nil), f.ManualDates...),
		},
		StartTime: f.StartTime,
		EndTime:   f.EndTime,
	}
}

// Persistence converts the fixture into the stored batch record.
func (f BatchFixture) Persistence() persistence.Batch {
	return persistence.Batch{
		ID:           f.ID,
		Name:         f.Name,
		VenueID:      cloneStringPtr(f.VenueID),
		PartnerID:    cloneStringPtr(f.PartnerID),
		Pattern:      f.Pattern,
		StartDate:    f.StartDate,
		EndDate:      f.EndDate,
		SessionCount: f.SessionCount,
		StartTime:    clockSeconds(f.StartTime),
		EndTime:      clockSeconds(f.EndTime),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture represents one deterministic session.
type SessionFixture struct {
	ID        string
	BatchID   string
	Date      time.Time
	StartTime string
	EndTime   string
	Status    scheduler.Status
	Notes     *string
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a scheduled 09:00 to 10:30 session on 2 April 2025.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:        fmt.Sprintf("session-%03d", idx),
		BatchID:   "batch-001",
		Date:      Date(time.April, 2),
		StartTime: "09:00",
		EndTime:   "10:30",
		Status:    scheduler.StatusScheduled,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionBatch overrides the owning batch.
func WithSessionBatch(batchID string) SessionOption {
	return func(f *SessionFixture) {
		f.BatchID = batchID
	}
}

// WithSessionSlot overrides the date and time range.
func WithSessionSlot(date time.Time, start, end string) SessionOption {
	return func(f *SessionFixture) {
		f.Date = date
		f.StartTime = start
		f.EndTime = end
	}
}

// WithSessionStatus overrides the lifecycle status.
func WithSessionStatus(status scheduler.Status) SessionOption {
	return func(f *SessionFixture) {
		f.Status = status
	}
}

// WithSessionNotes sets the notes.
func WithSessionNotes(notes string) SessionOption {
	return func(f *SessionFixture) {
		f.Notes = &notes
	}
}

// Scheduler converts the fixture into the conflict checker's session type.
func (f SessionFixture) Scheduler() scheduler.Session {
	session := scheduler.Session{
		ID:        f.ID,
		Date:      f.Date,
		StartTime: scheduler.MustParseTimeOfDay(f.StartTime),
		EndTime:   scheduler.MustParseTimeOfDay(f.EndTime),
		Status:    f.Status,
	}
	if f.Notes != nil {
		session.Notes = *f.Notes
	}
	return session
}

// Persistence converts the fixture into the stored session record.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:        f.ID,
		BatchID:   f.BatchID,
		Date:      f.Date,
		StartTime: clockSeconds(f.StartTime),
		EndTime:   clockSeconds(f.EndTime),
		Status:    string(f.Status),
		Notes:     cloneStringPtr(f.Notes),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
}

// SchedulerSessions converts several fixtures at once.
func SchedulerSessions(fixtures ...SessionFixture) []scheduler.Session {
	out := make([]scheduler.Session, 0, len(fixtures))
	for _, f := range fixtures {
		out = append(out, f.Scheduler())
	}
	return out
}

func clockSeconds(value string) string {
	if len(value) == len("15:04") {
		return value + ":00"
	}
	return value
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
