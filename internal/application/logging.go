package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/batch-scheduler/internal/logging"
	"github.com/example/batch-scheduler/internal/recurrence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = base
	}
	if logger == nil {
		logger = slog.Default()
	}

	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	if len(attrs) > 0 {
		pairs = append(pairs, attrs...)
	}
	return logger.With(pairs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrSessionNotReschedulable):
		return "session_not_reschedulable"
	case errors.Is(err, scheduler.ErrConflictDetected):
		return "session_conflict"
	case errors.Is(err, scheduler.ErrTimeOrder):
		return "time_order"
	case errors.Is(err, recurrence.ErrInvalidRange):
		return "invalid_range"
	case errors.Is(err, recurrence.ErrInvalidPattern):
		return "invalid_pattern"
	case errors.Is(err, recurrence.ErrSessionLimitExceeded):
		return "session_limit_exceeded"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
