package http

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/export"
)

type batchReader interface {
	GetBatch(ctx context.Context, batchID string) (application.Batch, error)
	ListSessions(ctx context.Context, batchID string) ([]application.Session, error)
}

// ExportHandler downloads a batch schedule as iCalendar or XLSX.
type ExportHandler struct {
	service   batchReader
	loc       *time.Location
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

func NewExportHandler(service batchReader, loc *time.Location, now func() time.Time, logger *slog.Logger) *ExportHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{service: service, loc: loc, now: now, responder: newResponder(base), logger: base}
}

func (h *ExportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ExportHandler", operation, attrs...)
}

func (h *ExportHandler) ICS(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "ICS", "text/calendar; charset=utf-8", "ics", func(buf *bytes.Buffer, batch application.Batch, sessions []application.Session) error {
		return export.WriteICS(buf, batch, sessions, h.loc, h.now())
	})
}

func (h *ExportHandler) XLSX(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "XLSX", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx", func(buf *bytes.Buffer, batch application.Batch, sessions []application.Session) error {
		return export.WriteXLSX(buf, batch, sessions)
	})
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, operation, contentType, ext string, render func(*bytes.Buffer, application.Batch, []application.Session) error) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	logger := h.log(r.Context(), operation, "batch_id", batchID)

	batch, err := h.service.GetBatch(r.Context(), batchID)
	if err != nil {
		logger.InfoContext(r.Context(), "export lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	sessions, err := h.service.ListSessions(r.Context(), batchID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load sessions for export", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	// Render fully before writing headers so a failure can still become a 500.
	var buf bytes.Buffer
	if err := render(&buf, batch, sessions); err != nil {
		logger.ErrorContext(r.Context(), "export rendering failed", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, codeInternal, fmt.Errorf("export failed"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="batch-%s.%s"`, batch.ID, ext))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.WarnContext(r.Context(), "failed to write export", "error", err)
		return
	}
	logger.InfoContext(r.Context(), "batch exported", "sessions", len(sessions))
}
