package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/recurrence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

func fixture() (application.Batch, []application.Session) {
	venue := "Room 4"
	reason := "trainer unavailable"
	batch := application.Batch{
		ID:        "batch-1",
		Name:      "Spring cohort",
		VenueID:   &venue,
		Pattern:   recurrence.PatternMWF,
		StartDate: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC),
	}
	sessions := []application.Session{
		{
			ID: "s-1", BatchID: "batch-1", Number: 1,
			Date:      time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
			StartTime: scheduler.MustParseTimeOfDay("09:00"),
			EndTime:   scheduler.MustParseTimeOfDay("10:30"),
			Status:    scheduler.StatusScheduled,
		},
		{
			ID: "s-2", BatchID: "batch-1", Number: 2,
			Date:      time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC),
			StartTime: scheduler.MustParseTimeOfDay("14:00"),
			EndTime:   scheduler.MustParseTimeOfDay("15:30"),
			Status:    scheduler.StatusRescheduled,
			Notes:     &reason,
		},
		{
			ID: "s-3", BatchID: "batch-1", Number: 3,
			Date:      time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC),
			StartTime: scheduler.MustParseTimeOfDay("09:00"),
			EndTime:   scheduler.MustParseTimeOfDay("10:30"),
			Status:    scheduler.StatusCancelled,
		},
	}
	return batch, sessions
}

func TestWriteICS(t *testing.T) {
	t.Parallel()

	batch, sessions := fixture()
	var buf bytes.Buffer
	stamp := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, WriteICS(&buf, batch, sessions, time.UTC, stamp))

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)

	events := cal.Events()
	require.Len(t, events, 3)

	second := events[1]
	assert.Equal(t, "s-2@batch-1", second.Id())
	assert.Equal(t, "Spring cohort: Session 2", second.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "20250405T140000Z", second.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "20250405T153000Z", second.GetProperty(ics.ComponentPropertyDtEnd).Value)
	assert.Equal(t, "trainer unavailable", second.GetProperty(ics.ComponentPropertyDescription).Value)
	assert.Equal(t, "Room 4", second.GetProperty(ics.ComponentPropertyLocation).Value)

	assert.Equal(t, string(ics.ObjectStatusCancelled), events[2].GetProperty(ics.ComponentPropertyStatus).Value)
	assert.Equal(t, string(ics.ObjectStatusConfirmed), events[0].GetProperty(ics.ComponentPropertyStatus).Value)
}

func TestWriteICSUsesLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+2", 2*60*60)
	batch, sessions := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteICS(&buf, batch, sessions[:1], loc, time.Now()))

	cal, err := ics.ParseCalendar(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	assert.Equal(t, "20250402T070000Z", cal.Events()[0].GetProperty(ics.ComponentPropertyDtStart).Value)
}

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	batch, sessions := fixture()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, batch, sessions))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 5)

	assert.Equal(t, "Spring cohort", rows[0][0])
	assert.Equal(t, xlsxHeader, rows[1])
	assert.Equal(t, []string{"2", "2025-04-05", "Saturday", "14:00", "15:30", "rescheduled", "trainer unavailable"}, rows[3])
	assert.Equal(t, "cancelled", rows[4][5])
}
