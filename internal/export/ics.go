// Package export renders a batch schedule as an iCalendar feed or an Excel
// workbook.
package export

import (
	"fmt"
	"io"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/scheduler"
)

const productID = "-//batch-scheduler//session export//EN"

// WriteICS writes one VEVENT per session. Session wall clock times are
// interpreted in loc; stamp is used for DTSTAMP.
func WriteICS(w io.Writer, batch application.Batch, sessions []application.Session, loc *time.Location, stamp time.Time) error {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetName(batch.Name)
	cal.SetXWRCalName(batch.Name)
	cal.SetXWRTimezone(loc.String())

	for _, session := range sessions {
		event := cal.AddEvent(fmt.Sprintf("%s@%s", session.ID, batch.ID))
		event.SetDtStampTime(stamp)
		if !session.UpdatedAt.IsZero() {
			event.SetModifiedAt(session.UpdatedAt)
		}
		event.SetStartAt(session.StartTime.On(session.Date, loc))
		event.SetEndAt(session.EndTime.On(session.Date, loc))
		event.SetSummary(fmt.Sprintf("%s: Session %d", batch.Name, session.Number))
		event.SetStatus(eventStatus(session.Status))
		if session.Notes != nil && *session.Notes != "" {
			event.SetDescription(*session.Notes)
		}
		if batch.VenueID != nil {
			event.SetLocation(*batch.VenueID)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("export: write calendar: %w", err)
	}
	return nil
}

func eventStatus(status scheduler.Status) ics.ObjectStatus {
	if status == scheduler.StatusCancelled {
		return ics.ObjectStatusCancelled
	}
	return ics.ObjectStatusConfirmed
}
