package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/recurrence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

var (
	errBadRequestBody = errors.New("request body is not valid JSON")
	errMissingAPIKey  = errors.New("an API key is required")
	errInvalidAPIKey  = errors.New("the API key is not valid")
)

const (
	codeNotFound                = "NOT_FOUND"
	codeAlreadyExists           = "ALREADY_EXISTS"
	codeValidationFailed        = "VALIDATION_FAILED"
	codeInvalidRange            = "INVALID_RANGE"
	codeInvalidPattern          = "INVALID_PATTERN"
	codeSessionLimitExceeded    = "SESSION_LIMIT_EXCEEDED"
	codeTimeOrder               = "TIME_ORDER"
	codeSessionConflict         = "SESSION_CONFLICT"
	codeSessionNotReschedulable = "SESSION_NOT_RESCHEDULABLE"
	codeUnauthorized            = "UNAUTHORIZED"
	codeBadRequest              = "BAD_REQUEST"
	codeInternal                = "INTERNAL"
)

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Conflict  *conflictDTO      `json:"conflict,omitempty"`
}

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	return responder{logger: defaultLogger(logger)}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, code string, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).WarnContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{ErrorCode: code, Message: message})
}

func (r responder) writeValidation(ctx context.Context, w http.ResponseWriter, fields map[string]string) {
	r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
		ErrorCode: codeValidationFailed,
		Message:   "request contains invalid fields",
		Errors:    fields,
	})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, codeInternal, errors.New("unknown error"))
		return
	}

	var conflict *scheduler.ConflictError
	var vErr *application.ValidationError

	switch {
	case errors.As(err, &conflict):
		with := toConflictDTO(conflict.With)
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: codeSessionConflict,
			Message:   "the requested slot overlaps another session",
			Conflict:  &with,
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{
			ErrorCode: codeNotFound,
			Message:   "the requested resource was not found",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: codeAlreadyExists,
			Message:   "a resource with the same identifier already exists",
		})
	case errors.Is(err, application.ErrSessionNotReschedulable):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: codeSessionNotReschedulable,
			Message:   "completed or cancelled sessions cannot be changed",
		})
	case errors.Is(err, recurrence.ErrInvalidRange):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: codeInvalidRange,
			Message:   "end date must not precede start date",
		})
	case errors.Is(err, recurrence.ErrInvalidPattern):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: codeInvalidPattern,
			Message:   "pattern must be one of MWF, TTS, weekend or manual",
		})
	case errors.Is(err, recurrence.ErrSessionLimitExceeded):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: codeSessionLimitExceeded,
			Message:   "the selection already holds the maximum number of sessions",
		})
	case errors.Is(err, scheduler.ErrTimeOrder):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: codeTimeOrder,
			Message:   "end time must be after start time",
		})
	case errors.As(err, &vErr):
		r.writeValidation(ctx, w, vErr.FieldErrors)
	default:
		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{
			ErrorCode: codeInternal,
			Message:   "internal server error",
		})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}
