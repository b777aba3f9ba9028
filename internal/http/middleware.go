package http

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request correlation ID in both directions.
const RequestIDHeader = "X-Request-ID"

// KeyVerifier checks a presented API key.
type KeyVerifier interface {
	Verify(key string) error
}

// RequestObserver records per route request metrics.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// RequestID reuses an incoming X-Request-ID or assigns a new UUID, and echoes
// it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ContextWithRequestID(r.Context(), id)))
	})
}

func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	base = defaultLogger(base)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attrs := []any{"method", r.Method, "path", r.URL.Path}
			if id, ok := RequestIDFromContext(r.Context()); ok {
				attrs = append(attrs, "request_id", id)
			}
			logger := base.With(attrs...)

			ctx := ContextWithLogger(r.Context(), logger)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			logger.DebugContext(ctx, "request started")
			next.ServeHTTP(ww, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed",
				"status", statusOf(ww),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// Recoverer turns a handler panic into a 500 response and logs the stack.
func Recoverer(logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				responder.loggerFor(r.Context()).ErrorContext(r.Context(), "handler panicked",
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{
					ErrorCode: codeInternal,
					Message:   "internal server error",
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAPIKey rejects requests whose bearer token does not match the
// configured API key hash.
func RequireAPIKey(verifier KeyVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := bearerToken(r)
			if key == "" {
				w.Header().Set("WWW-Authenticate", `Bearer realm="batch-scheduler"`)
				responder.writeError(r.Context(), w, http.StatusUnauthorized, codeUnauthorized, errMissingAPIKey)
				return
			}
			if verifier == nil {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, codeUnauthorized, errInvalidAPIKey)
				return
			}
			if err := verifier.Verify(key); err != nil {
				responder.loggerFor(r.Context()).WarnContext(r.Context(), "api key rejected", "error", err)
				w.Header().Set("WWW-Authenticate", `Bearer realm="batch-scheduler", error="invalid_token"`)
				responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
					ErrorCode: codeUnauthorized,
					Message:   errInvalidAPIKey.Error(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Metrics reports each request under its chi route pattern so path
// parameters do not explode label cardinality.
func Metrics(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if observer == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			observer.ObserveRequest(r.Method, route, statusOf(ww), time.Since(start))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func statusOf(ww middleware.WrapResponseWriter) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	return http.StatusOK
}
