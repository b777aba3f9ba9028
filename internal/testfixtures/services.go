package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/batch-scheduler/internal/application"
	"github.com/example/batch-scheduler/internal/persistence"
	"github.com/example/batch-scheduler/internal/recurrence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with a reference clock and
// "id" prefixed identifiers.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// BatchServiceDeps captures dependencies for constructing a batch service.
// Zero values fall back to the factory clock and identifiers, UTC and no
// session cache.
type BatchServiceDeps struct {
	Batches  persistence.BatchRepository
	Sessions persistence.SessionRepository
	Location *time.Location
	Cache    *application.SessionCache
	Metrics  application.MetricsRecorder
	Logger   *slog.Logger
}

// NewBatchService builds a batch service from deps combined with the factory
// defaults.
func (f *ServiceFactory) NewBatchService(deps BatchServiceDeps) *application.BatchService {
	opts := []application.BatchServiceOption{application.WithLogger(deps.Logger)}
	if deps.Cache != nil {
		opts = append(opts, application.WithSessionCache(deps.Cache))
	}
	if deps.Metrics != nil {
		opts = append(opts, application.WithMetrics(deps.Metrics))
	}
	return application.NewBatchService(
		deps.Batches,
		deps.Sessions,
		recurrence.NewEngine(deps.Location),
		f.IDGenerator.NextFunc(),
		f.Clock.NowFunc(),
		opts...,
	)
}

// NewSQLiteBatchService wires a batch service to the repositories of h.
func (f *ServiceFactory) NewSQLiteBatchService(h *SQLiteHarness, deps BatchServiceDeps) *application.BatchService {
	deps.Batches = h.Batches
	deps.Sessions = h.Sessions
	return f.NewBatchService(deps)
}
