package http

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/scheduler"
)

// dateParser collects field errors while converting request dates into
// calendar dates in the scheduling location.
type dateParser struct {
	loc    *time.Location
	errors map[string]string
}

func newDateParser(loc *time.Location) *dateParser {
	if loc == nil {
		loc = time.UTC
	}
	return &dateParser{loc: loc}
}

func (p *dateParser) date(field, value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.ParseInLocation(time.DateOnly, value, p.loc)
	if err != nil {
		p.fail(field, "must be a date formatted as YYYY-MM-DD")
		return time.Time{}
	}
	return parsed
}

func (p *dateParser) dates(field string, values []string) []time.Time {
	if len(values) == 0 {
		return nil
	}
	out := make([]time.Time, 0, len(values))
	for i, value := range values {
		parsed := p.date(fmt.Sprintf("%s[%d]", field, i), value)
		if parsed.IsZero() {
			if strings.TrimSpace(value) == "" {
				p.fail(fmt.Sprintf("%s[%d]", field, i), "is required")
			}
			continue
		}
		out = append(out, parsed)
	}
	return out
}

func (p *dateParser) fail(field, message string) {
	if p.errors == nil {
		p.errors = make(map[string]string)
	}
	if _, exists := p.errors[field]; !exists {
		p.errors[field] = message
	}
}

func (p *dateParser) failed() bool {
	return len(p.errors) > 0
}

func formatDates(dates []time.Time) []string {
	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(time.DateOnly))
	}
	return out
}

type scheduleRequest struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Pattern      string   `json:"pattern"`
	SessionCount int      `json:"session_count"`
	ManualDates  []string `json:"manual_dates"`
}

func (r scheduleRequest) toInput(p *dateParser) application.BatchScheduleInput {
	return application.BatchScheduleInput{
		StartDate:    p.date("start_date", r.StartDate),
		EndDate:      p.date("end_date", r.EndDate),
		Pattern:      strings.TrimSpace(r.Pattern),
		SessionCount: r.SessionCount,
		ManualDates:  p.dates("manual_dates", r.ManualDates),
	}
}

type batchRequest struct {
	Name      string  `json:"name"`
	VenueID   *string `json:"venue_id"`
	PartnerID *string `json:"partner_id"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	scheduleRequest
}

func (r batchRequest) toInput(p *dateParser) application.BatchInput {
	return application.BatchInput{
		Name:      strings.TrimSpace(r.Name),
		VenueID:   r.VenueID,
		PartnerID: r.PartnerID,
		Schedule:  r.scheduleRequest.toInput(p),
		StartTime: strings.TrimSpace(r.StartTime),
		EndTime:   strings.TrimSpace(r.EndTime),
	}
}

type rescheduleRequest struct {
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Reason    string `json:"reason"`
}

type statusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

type batchDTO struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	VenueID      *string `json:"venue_id,omitempty"`
	PartnerID    *string `json:"partner_id,omitempty"`
	Pattern      string  `json:"pattern"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
	SessionCount int     `json:"session_count"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toBatchDTO(batch application.Batch) batchDTO {
	return batchDTO{
		ID:           batch.ID,
		Name:         batch.Name,
		VenueID:      batch.VenueID,
		PartnerID:    batch.PartnerID,
		Pattern:      string(batch.Pattern),
		StartDate:    batch.StartDate.Format(time.DateOnly),
		EndDate:      batch.EndDate.Format(time.DateOnly),
		SessionCount: batch.SessionCount,
		StartTime:    batch.StartTime.String(),
		EndTime:      batch.EndTime.String(),
		CreatedAt:    batch.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    batch.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toBatchDTOs(batches []application.Batch) []batchDTO {
	out := make([]batchDTO, 0, len(batches))
	for _, batch := range batches {
		out = append(out, toBatchDTO(batch))
	}
	return out
}

type sessionDTO struct {
	ID        string  `json:"id"`
	BatchID   string  `json:"batch_id"`
	Number    int     `json:"number"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Status    string  `json:"status"`
	Notes     *string `json:"notes,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:        session.ID,
		BatchID:   session.BatchID,
		Number:    session.Number,
		Date:      session.Date.Format(time.DateOnly),
		StartTime: session.StartTime.String(),
		EndTime:   session.EndTime.String(),
		Status:    string(session.Status),
		Notes:     session.Notes,
		UpdatedAt: session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toSessionDTOs(sessions []application.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	return out
}

type conflictDTO struct {
	SessionID string `json:"session_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

func toConflictDTO(session scheduler.Session) conflictDTO {
	return conflictDTO{
		SessionID: session.ID,
		Date:      session.Date.Format(time.DateOnly),
		StartTime: session.StartTime.String(),
		EndTime:   session.EndTime.String(),
		Status:    string(session.Status),
	}
}

func conflictFromSession(session application.Session) conflictDTO {
	return conflictDTO{
		SessionID: session.ID,
		Date:      session.Date.Format(time.DateOnly),
		StartTime: session.StartTime.String(),
		EndTime:   session.EndTime.String(),
		Status:    string(session.Status),
	}
}
