package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/auth"
	"github.com/example/batch-scheduler/internal/config"
	httptransport "github.com/example/batch-scheduler/internal/http"
	"github.com/example/batch-scheduler/internal/logging"
	"github.com/example/batch-scheduler/internal/metrics"
	"github.com/example/batch-scheduler/internal/persistence/sqlite"
	"github.com/example/batch-scheduler/internal/recurrence"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	return cmd
}

// server holds the wired HTTP handler and the resources it owns.
type server struct {
	pool    *sqlite.ConnectionPool
	handler http.Handler
}

func (s *server) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// newServer opens and migrates the database and wires services, middleware
// and routes.
func newServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*server, error) {
	verifier, err := auth.NewVerifier(cfg.APIKeyHash)
	if err != nil {
		return nil, fmt.Errorf("api key hash: %w", err)
	}

	pool, err := sqlite.Open(ctx, cfg.SQLiteDSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Migrate(ctx, logger); err != nil {
		_ = pool.Close()
		return nil, err
	}

	recorder := metrics.NewRecorder(true)
	service := application.NewBatchService(
		sqlite.NewBatchRepository(pool),
		sqlite.NewSessionRepository(pool),
		recurrence.NewEngine(cfg.Location),
		nil,
		time.Now,
		application.WithLogger(logger),
		application.WithSessionCache(application.NewSessionCache(cfg.CacheSize, cfg.CacheTTL)),
		application.WithMetrics(recorder),
	)
	loc := service.Engine().Location()

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Batches:        httptransport.NewBatchHandler(service, loc, logger),
		Schedules:      httptransport.NewScheduleHandler(service, loc, logger),
		Exports:        httptransport.NewExportHandler(service, loc, time.Now, logger),
		Auth:           httptransport.RequireAPIKey(verifier, logger),
		MetricsPath:    cfg.MetricsPath,
		MetricsHandler: recorder.Handler(),
		Logger:         logger,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestID,
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
			httptransport.Metrics(recorder),
		},
	})

	return &server{pool: pool, handler: handler}, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	srv, err := newServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := srv.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           srv.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("scheduler API listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
