package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/batch-scheduler/internal/application"
)

type batchService interface {
	CreateBatch(ctx context.Context, input application.BatchInput) (application.Batch, error)
	UpdateBatch(ctx context.Context, batchID string, input application.BatchInput) (application.Batch, error)
	GetBatch(ctx context.Context, batchID string) (application.Batch, error)
	ListBatches(ctx context.Context) ([]application.Batch, error)
	DeleteBatch(ctx context.Context, batchID string) error
	ListSessions(ctx context.Context, batchID string) ([]application.Session, error)
	CheckConflict(ctx context.Context, params application.RescheduleParams) (*application.Session, error)
	RescheduleSession(ctx context.Context, params application.RescheduleParams) (application.Session, error)
	SetSessionStatus(ctx context.Context, params application.StatusParams) (application.Session, error)
}

// BatchHandler exposes batch and session management.
type BatchHandler struct {
	service   batchService
	loc       *time.Location
	responder responder
	logger    *slog.Logger
}

func NewBatchHandler(service batchService, loc *time.Location, logger *slog.Logger) *BatchHandler {
	base := defaultLogger(logger)
	if loc == nil {
		loc = time.UTC
	}
	return &BatchHandler{service: service, loc: loc, responder: newResponder(base), logger: base}
}

func (h *BatchHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BatchHandler", operation, attrs...)
}

func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batches, err := h.service.ListBatches(r.Context())
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "batch listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBatchesResponse{Batches: toBatchDTOs(batches)})
}

func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode batch request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	parser := newDateParser(h.loc)
	input := req.toInput(parser)
	if parser.failed() {
		h.responder.writeValidation(r.Context(), w, parser.errors)
		return
	}

	logger := h.log(r.Context(), "Create", "pattern", input.Schedule.Pattern)

	batch, err := h.service.CreateBatch(r.Context(), input)
	if err != nil {
		logger.WarnContext(r.Context(), "batch creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), batch.ID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load sessions of new batch", "error", err, "batch_id", batch.ID)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("batch_id", batch.ID).InfoContext(r.Context(), "batch created", "sessions", len(sessions))
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, batchResponse{
		Batch:    toBatchDTO(batch),
		Sessions: toSessionDTOs(sessions),
	})
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	batch, err := h.service.GetBatch(r.Context(), batchID)
	if err != nil {
		h.log(r.Context(), "Get", "batch_id", batchID).InfoContext(r.Context(), "batch lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, batchResponse{Batch: toBatchDTO(batch)})
}

func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batchID := chi.URLParam(r, "batchID")

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "batch_id", batchID, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode batch update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	parser := newDateParser(h.loc)
	input := req.toInput(parser)
	if parser.failed() {
		h.responder.writeValidation(r.Context(), w, parser.errors)
		return
	}

	logger := h.log(r.Context(), "Update", "batch_id", batchID)

	batch, err := h.service.UpdateBatch(r.Context(), batchID, input)
	if err != nil {
		logger.WarnContext(r.Context(), "batch update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), batch.ID)
	if err != nil {
		logger.ErrorContext(r.Context(), "failed to load sessions of updated batch", "error", err)
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "batch updated", "sessions", len(sessions))
	h.responder.writeJSON(r.Context(), w, http.StatusOK, batchResponse{
		Batch:    toBatchDTO(batch),
		Sessions: toSessionDTOs(sessions),
	})
}

func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	logger := h.log(r.Context(), "Delete", "batch_id", batchID)

	if err := h.service.DeleteBatch(r.Context(), batchID); err != nil {
		logger.WarnContext(r.Context(), "batch deletion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "batch deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BatchHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	sessions, err := h.service.ListSessions(r.Context(), batchID)
	if err != nil {
		h.log(r.Context(), "ListSessions", "batch_id", batchID).InfoContext(r.Context(), "session listing failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: toSessionDTOs(sessions)})
}

func (h *BatchHandler) CheckConflict(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, ok := h.decodeReschedule(w, r, "CheckConflict")
	if !ok {
		return
	}

	conflict, err := h.service.CheckConflict(r.Context(), params)
	if err != nil {
		h.log(r.Context(), "CheckConflict", "batch_id", params.BatchID, "session_id", params.SessionID).
			InfoContext(r.Context(), "conflict check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	response := conflictCheckResponse{}
	if conflict != nil {
		dto := conflictFromSession(*conflict)
		response.Conflict = &dto
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, response)
}

func (h *BatchHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, ok := h.decodeReschedule(w, r, "Reschedule")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Reschedule", "batch_id", params.BatchID, "session_id", params.SessionID)

	session, err := h.service.RescheduleSession(r.Context(), params)
	if err != nil {
		logger.InfoContext(r.Context(), "reschedule rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *BatchHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	batchID := chi.URLParam(r, "batchID")
	sessionID := chi.URLParam(r, "sessionID")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "SetStatus", "batch_id", batchID, "session_id", sessionID, "error_kind", "bad_request").
			WarnContext(r.Context(), "failed to decode status request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return
	}

	session, err := h.service.SetSessionStatus(r.Context(), application.StatusParams{
		BatchID:   batchID,
		SessionID: sessionID,
		Status:    req.Status,
		Notes:     req.Notes,
	})
	if err != nil {
		h.log(r.Context(), "SetStatus", "batch_id", batchID, "session_id", sessionID).
			InfoContext(r.Context(), "status change rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *BatchHandler) decodeReschedule(w http.ResponseWriter, r *http.Request, operation string) (application.RescheduleParams, bool) {
	batchID := chi.URLParam(r, "batchID")
	sessionID := chi.URLParam(r, "sessionID")

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "batch_id", batchID, "session_id", sessionID, "error_kind", "bad_request").
			WarnContext(r.Context(), "failed to decode reschedule request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, codeBadRequest, errBadRequestBody)
		return application.RescheduleParams{}, false
	}

	parser := newDateParser(h.loc)
	date := parser.date("date", req.Date)
	if parser.failed() {
		h.responder.writeValidation(r.Context(), w, parser.errors)
		return application.RescheduleParams{}, false
	}

	return application.RescheduleParams{
		BatchID:   batchID,
		SessionID: sessionID,
		Date:      date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}, true
}

type listBatchesResponse struct {
	Batches []batchDTO `json:"batches"`
}

type batchResponse struct {
	Batch    batchDTO     `json:"batch"`
	Sessions []sessionDTO `json:"sessions,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type conflictCheckResponse struct {
	Conflict *conflictDTO `json:"conflict"`
}
