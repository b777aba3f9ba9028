package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	Batches   *BatchHandler
	Schedules *ScheduleHandler
	Exports   *ExportHandler

	// Auth guards every route except /healthz and the metrics endpoint.
	Auth func(http.Handler) http.Handler

	MetricsPath    string
	MetricsHandler http.Handler

	Middleware []func(http.Handler) http.Handler
	Logger     *slog.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	responder := newResponder(cfg.Logger)
	r := chi.NewRouter()

	for _, mw := range cfg.Middleware {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		responder.writeJSON(req.Context(), w, http.StatusNotFound, errorResponse{
			ErrorCode: codeNotFound,
			Message:   "the requested resource was not found",
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		responder.writeJSON(req.Context(), w, http.StatusMethodNotAllowed, errorResponse{
			Message: http.StatusText(http.StatusMethodNotAllowed),
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		responder.writeJSON(req.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if cfg.MetricsHandler != nil {
		path := strings.TrimSpace(cfg.MetricsPath)
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, cfg.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if cfg.Auth != nil {
			r.Use(cfg.Auth)
		}

		if cfg.Schedules != nil {
			r.Post("/schedule/preview", cfg.Schedules.Preview)
			r.Post("/schedule/manual-selection", cfg.Schedules.ManualSelection)
		}

		r.Route("/batches", func(r chi.Router) {
			if cfg.Batches != nil {
				r.Get("/", cfg.Batches.List)
				r.Post("/", cfg.Batches.Create)
			}

			r.Route("/{batchID}", func(r chi.Router) {
				if cfg.Batches != nil {
					r.Get("/", cfg.Batches.Get)
					r.Put("/", cfg.Batches.Update)
					r.Delete("/", cfg.Batches.Delete)
					r.Get("/sessions", cfg.Batches.ListSessions)
					r.Post("/sessions/{sessionID}/conflicts", cfg.Batches.CheckConflict)
					r.Post("/sessions/{sessionID}/reschedule", cfg.Batches.Reschedule)
					r.Post("/sessions/{sessionID}/status", cfg.Batches.SetStatus)
				}
				if cfg.Exports != nil {
					r.Get("/export.ics", cfg.Exports.ICS)
					r.Get("/export.xlsx", cfg.Exports.XLSX)
				}
			})
		})
	})

	return r
}
