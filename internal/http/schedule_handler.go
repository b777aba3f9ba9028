package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/batch-scheduler/internal/application"
)

type scheduleService interface {
	PreviewSchedule(input application.BatchScheduleInput) ([]time.Time, error)
	SelectManualDate(selected []time.Time, date time.Time, sessionCount int) ([]time.Time, error)
}

// ScheduleHandler serves the stateless schedule form helpers: date preview
// and the manual date picker.
type ScheduleHandler struct {
	service   scheduleService
	loc       *time.Location
	responder responder
	logger    *slog.Logger
}

func NewScheduleHandler(service scheduleService, loc *time.Location, logger *slog.Logger) *ScheduleHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleHandler{service: service, loc: loc, responder: newResponder(base), logger: base}
}

func (h *ScheduleHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ScheduleHandler", operation, attrs...)
}

func (h *ScheduleHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Preview", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode preview request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	parser := newDateParser(h.loc)
	input := req.toInput(parser)
	if parser.failed() {
		h.responder.writeValidation(r.Context(), w, parser.errors)
		return
	}

	logger := h.log(r.Context(), "Preview", "pattern", input.Pattern)

	dates, err := h.service.PreviewSchedule(input)
	if err != nil {
		logger.WarnContext(r.Context(), "schedule preview failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.DebugContext(r.Context(), "schedule previewed", "dates", len(dates))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, previewResponse{Dates: formatDates(dates)})
}

func (h *ScheduleHandler) ManualSelection(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req manualSelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "ManualSelection", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode selection request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	parser := newDateParser(h.loc)
	selected := parser.dates("selected", req.Selected)
	date := parser.date("date", req.Date)
	if date.IsZero() {
		parser.fail("date", "is required")
	}
	if parser.failed() {
		h.responder.writeValidation(r.Context(), w, parser.errors)
		return
	}

	updated, err := h.service.SelectManualDate(selected, date, req.SessionCount)
	if err != nil {
		h.log(r.Context(), "ManualSelection", "session_count", req.SessionCount).
			InfoContext(r.Context(), "manual selection rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, manualSelectionResponse{Selected: formatDates(updated)})
}

type previewResponse struct {
	Dates []string `json:"dates"`
}

type manualSelectionRequest struct {
	Selected     []string `json:"selected"`
	Date         string   `json:"date"`
	SessionCount int      `json:"session_count"`
}

type manualSelectionResponse struct {
	Selected []string `json:"selected"`
}
