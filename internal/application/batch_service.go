package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/batch-scheduler/internal/persistence"
	"github.com/example/batch-scheduler/internal/recurrence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

// MetricsRecorder receives scheduling events for instrumentation.
type MetricsRecorder interface {
	ObserveExpansion(pattern string, sessions int)
	ConflictDetected()
	SessionRescheduled()
	SessionCacheLookup(hit bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveExpansion(string, int) {}
func (noopMetrics) ConflictDetected()            {}
func (noopMetrics) SessionRescheduled()          {}
func (noopMetrics) SessionCacheLookup(bool)      {}

// BatchService orchestrates schedule expansion, conflict checking, and
// persistence for batches and their sessions.
type BatchService struct {
	batches     persistence.BatchRepository
	sessions    persistence.SessionRepository
	engine      *recurrence.Engine
	cache       *SessionCache
	metrics     MetricsRecorder
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// BatchServiceOption configures optional BatchService collaborators.
type BatchServiceOption func(*BatchService)

// WithLogger sets the base logger used when the context carries none.
func WithLogger(logger *slog.Logger) BatchServiceOption {
	return func(s *BatchService) {
		s.logger = defaultLogger(logger)
	}
}

// WithSessionCache serves ListSessions through cache.
func WithSessionCache(cache *SessionCache) BatchServiceOption {
	return func(s *BatchService) {
		s.cache = cache
	}
}

// WithMetrics routes scheduling events to recorder.
func WithMetrics(recorder MetricsRecorder) BatchServiceOption {
	return func(s *BatchService) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// NewBatchService wires dependencies for batch operations. A nil engine uses
// UTC, a nil idGenerator produces random UUIDs and a nil now uses time.Now.
func NewBatchService(batches persistence.BatchRepository, sessions persistence.SessionRepository, engine *recurrence.Engine, idGenerator func() string, now func() time.Time, opts ...BatchServiceOption) *BatchService {
	if engine == nil {
		engine = recurrence.NewEngine(nil)
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	if now == nil {
		now = time.Now
	}
	svc := &BatchService{
		batches:     batches,
		sessions:    sessions,
		engine:      engine,
		metrics:     noopMetrics{},
		idGenerator: idGenerator,
		now:         now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Engine exposes the expansion engine so callers share its location.
func (s *BatchService) Engine() *recurrence.Engine {
	return s.engine
}

func (s *BatchService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BatchService", operation, attrs...)
}

// PreviewSchedule expands the schedule section of the batch form without
// persisting anything. Manual selections are returned sorted and deduplicated
// regardless of the session count.
func (s *BatchService) PreviewSchedule(input BatchScheduleInput) ([]time.Time, error) {
	if s == nil {
		return nil, fmt.Errorf("BatchService is nil")
	}
	pattern, err := recurrence.ParsePattern(input.Pattern)
	if err != nil {
		return nil, err
	}
	if vErr := validateScheduleInput(input); vErr.HasErrors() {
		return nil, vErr
	}
	dates, err := s.engine.Expand(s.expansionConfig(input, pattern))
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveExpansion(string(pattern), len(dates))
	return dates, nil
}

// SelectManualDate toggles date in a manual selection capped at sessionCount.
func (s *BatchService) SelectManualDate(selected []time.Time, date time.Time, sessionCount int) ([]time.Time, error) {
	if s == nil {
		return nil, fmt.Errorf("BatchService is nil")
	}
	days := make([]time.Time, 0, len(selected))
	for _, d := range selected {
		days = append(days, s.calendarDate(d))
	}
	return s.engine.SelectDate(days, s.calendarDate(date), sessionCount)
}

// CreateBatch validates the input, expands its schedule and stores the batch
// together with one session per generated date.
func (s *BatchService) CreateBatch(ctx context.Context, input BatchInput) (batch Batch, err error) {
	if s == nil {
		err = fmt.Errorf("BatchService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateBatch", "pattern", input.Schedule.Pattern)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create batch", err)
			return
		}
		logger.With("batch_id", batch.ID, "session_count", batch.SessionCount).InfoContext(ctx, "batch created")
	}()

	if s.batches == nil {
		err = fmt.Errorf("batch repository not configured")
		return
	}

	start, end, err := s.validateBatchInput(input)
	if err != nil {
		return
	}

	dates, pattern, err := s.expandForBatch(input.Schedule)
	if err != nil {
		return
	}

	now := s.now()
	batch = Batch{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		VenueID:      normalizeOptionalString(input.VenueID),
		PartnerID:    normalizeOptionalString(input.PartnerID),
		Pattern:      pattern,
		StartDate:    s.calendarDate(input.Schedule.StartDate),
		EndDate:      s.calendarDate(input.Schedule.EndDate),
		SessionCount: len(dates),
		StartTime:    start,
		EndTime:      end,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	sessions := s.buildSessions(batch, dates)
	if err = s.batches.CreateBatch(ctx, toPersistenceBatch(batch), toPersistenceSessions(sessions)); err != nil {
		err = mapRepoError(err)
		return
	}

	s.cache.Invalidate(batch.ID)
	return
}

// UpdateBatch applies an edited batch form. The session list is regenerated
// from the new schedule, so batches with completed sessions are refused.
func (s *BatchService) UpdateBatch(ctx context.Context, batchID string, input BatchInput) (batch Batch, err error) {
	if s == nil {
		err = fmt.Errorf("BatchService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBatch", "batch_id", batchID, "pattern", input.Schedule.Pattern)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update batch", err)
			return
		}
		logger.With("session_count", batch.SessionCount).InfoContext(ctx, "batch updated")
	}()

	if s.batches == nil || s.sessions == nil {
		err = fmt.Errorf("batch repository not configured")
		return
	}

	existing, err := s.GetBatch(ctx, batchID)
	if err != nil {
		return
	}

	current, err := s.loadSessions(ctx, batchID)
	if err != nil {
		return
	}
	for _, session := range current {
		if session.Status == scheduler.StatusCompleted {
			err = newValidationError("sessions", "batch has completed sessions and its schedule can no longer be regenerated")
			return
		}
	}

	start, end, err := s.validateBatchInput(input)
	if err != nil {
		return
	}

	dates, pattern, err := s.expandForBatch(input.Schedule)
	if err != nil {
		return
	}

	batch = existing
	batch.Name = strings.TrimSpace(input.Name)
	batch.VenueID = normalizeOptionalString(input.VenueID)
	batch.PartnerID = normalizeOptionalString(input.PartnerID)
	batch.Pattern = pattern
	batch.StartDate = s.calendarDate(input.Schedule.StartDate)
	batch.EndDate = s.calendarDate(input.Schedule.EndDate)
	batch.SessionCount = len(dates)
	batch.StartTime = start
	batch.EndTime = end
	batch.UpdatedAt = s.now()

	sessions := s.buildSessions(batch, dates)
	err = s.batches.UpdateBatch(ctx, toPersistenceBatch(batch), toPersistenceSessions(sessions))
	s.cache.Invalidate(batchID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetBatch returns the batch identified by batchID.
func (s *BatchService) GetBatch(ctx context.Context, batchID string) (Batch, error) {
	if s == nil {
		return Batch{}, fmt.Errorf("BatchService is nil")
	}
	if s.batches == nil {
		return Batch{}, fmt.Errorf("batch repository not configured")
	}
	if strings.TrimSpace(batchID) == "" {
		return Batch{}, ErrNotFound
	}

	stored, err := s.batches.GetBatch(ctx, batchID)
	if err != nil {
		return Batch{}, mapRepoError(err)
	}
	return s.fromPersistenceBatch(stored)
}

// ListBatches returns every batch ordered by start date.
func (s *BatchService) ListBatches(ctx context.Context) ([]Batch, error) {
	if s == nil {
		return nil, fmt.Errorf("BatchService is nil")
	}
	if s.batches == nil {
		return nil, fmt.Errorf("batch repository not configured")
	}

	stored, err := s.batches.ListBatches(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	batches := make([]Batch, 0, len(stored))
	for _, record := range stored {
		batch, err := s.fromPersistenceBatch(record)
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].StartDate.Equal(batches[j].StartDate) {
			return batches[i].ID < batches[j].ID
		}
		return batches[i].StartDate.Before(batches[j].StartDate)
	})
	return batches, nil
}

// DeleteBatch removes a batch together with its sessions.
func (s *BatchService) DeleteBatch(ctx context.Context, batchID string) (err error) {
	if s == nil {
		return fmt.Errorf("BatchService is nil")
	}

	logger := s.loggerWith(ctx, "DeleteBatch", "batch_id", batchID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to delete batch", err)
			return
		}
		logger.InfoContext(ctx, "batch deleted")
	}()

	if s.batches == nil {
		err = fmt.Errorf("batch repository not configured")
		return
	}

	err = s.batches.DeleteBatch(ctx, batchID)
	s.cache.Invalidate(batchID)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// ListSessions returns the sessions of a batch ordered by date and start time
// and numbered from 1.
func (s *BatchService) ListSessions(ctx context.Context, batchID string) ([]Session, error) {
	if s == nil {
		return nil, fmt.Errorf("BatchService is nil")
	}
	if cached, ok := s.cache.Get(batchID); ok {
		s.metrics.SessionCacheLookup(true)
		return cached, nil
	}
	if s.cache != nil {
		s.metrics.SessionCacheLookup(false)
	}

	sessions, err := s.loadSessions(ctx, batchID)
	if err != nil {
		return nil, err
	}
	s.cache.Store(batchID, sessions)
	return sessions, nil
}

// CheckConflict runs the reschedule checks without persisting anything. It
// returns the first session the proposed slot collides with, or nil.
func (s *BatchService) CheckConflict(ctx context.Context, params RescheduleParams) (*Session, error) {
	if s == nil {
		return nil, fmt.Errorf("BatchService is nil")
	}

	plan, err := s.planReschedule(ctx, params)
	if err != nil {
		return nil, err
	}

	conflict, ok := scheduler.FindConflict(plan.occupied, plan.candidate, plan.target.ID)
	if !ok {
		return nil, nil
	}
	s.metrics.ConflictDetected()

	session := plan.byID[conflict.ID]
	return &session, nil
}

// RescheduleSession moves one session to a new date and time range. The move
// is refused when the session is completed or cancelled, when the range is
// not ordered, or when it overlaps another session of the same batch on the
// target date. On success the session status becomes rescheduled and the
// reason, when given, replaces its notes.
func (s *BatchService) RescheduleSession(ctx context.Context, params RescheduleParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("BatchService is nil")
		return
	}

	logger := s.loggerWith(ctx, "RescheduleSession",
		"batch_id", params.BatchID,
		"session_id", params.SessionID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to reschedule session", err)
			return
		}
		logger.With(
			"date", session.Date.Format(time.DateOnly),
			"start_time", session.StartTime.String(),
			"end_time", session.EndTime.String(),
		).InfoContext(ctx, "session rescheduled")
	}()

	plan, err := s.planReschedule(ctx, params)
	if err != nil {
		return
	}

	if err = scheduler.CheckConflict(plan.occupied, plan.candidate, plan.target.ID); err != nil {
		s.metrics.ConflictDetected()
		return
	}

	session = plan.target
	session.Date = plan.candidate.Date
	session.StartTime = plan.candidate.StartTime
	session.EndTime = plan.candidate.EndTime
	session.Status = scheduler.StatusRescheduled
	if reason := strings.TrimSpace(params.Reason); reason != "" {
		session.Notes = &reason
	}
	session.UpdatedAt = s.now()

	err = s.sessions.UpdateSession(ctx, toPersistenceSession(session))
	s.cache.Invalidate(params.BatchID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	s.metrics.SessionRescheduled()
	return
}

// SetSessionStatus marks a session as completed or cancelled. Sessions that
// already reached either state cannot change again.
func (s *BatchService) SetSessionStatus(ctx context.Context, params StatusParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("BatchService is nil")
		return
	}

	logger := s.loggerWith(ctx, "SetSessionStatus",
		"batch_id", params.BatchID,
		"session_id", params.SessionID,
		"status", params.Status,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update session status", err)
			return
		}
		logger.InfoContext(ctx, "session status updated")
	}()

	if s.sessions == nil {
		err = fmt.Errorf("session repository not configured")
		return
	}

	status, parseErr := scheduler.ParseStatus(params.Status)
	if parseErr != nil || !status.Terminal() {
		err = newValidationError("status", "status must be completed or cancelled")
		return
	}

	if strings.TrimSpace(params.BatchID) == "" || strings.TrimSpace(params.SessionID) == "" {
		err = ErrNotFound
		return
	}
	stored, err := s.sessions.GetSession(ctx, params.BatchID, params.SessionID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if session, err = s.fromPersistenceSession(stored); err != nil {
		return
	}
	if session.Status.Terminal() {
		err = fmt.Errorf("%w: session is %s", ErrSessionNotReschedulable, session.Status)
		return
	}

	session.Status = status
	if params.Notes != nil {
		session.Notes = normalizeOptionalString(params.Notes)
	}
	session.UpdatedAt = s.now()

	err = s.sessions.UpdateSession(ctx, toPersistenceSession(session))
	s.cache.Invalidate(params.BatchID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	// Number is positional; read it back from the refreshed list.
	if listed, listErr := s.ListSessions(ctx, params.BatchID); listErr == nil {
		if numbered, ok := findSession(listed, session.ID); ok {
			session.Number = numbered.Number
		}
	}
	return
}

type reschedulePlan struct {
	target    Session
	candidate scheduler.Candidate
	occupied  []scheduler.Session
	byID      map[string]Session
}

// planReschedule validates params against a freshly loaded session list. The
// cache is bypassed so the conflict check always sees the stored schedule.
func (s *BatchService) planReschedule(ctx context.Context, params RescheduleParams) (reschedulePlan, error) {
	if s.sessions == nil {
		return reschedulePlan{}, fmt.Errorf("session repository not configured")
	}

	vErr := &ValidationError{}
	if params.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	start, startErr := scheduler.ParseTimeOfDay(params.StartTime)
	if startErr != nil {
		vErr.add("start_time", "start time must be HH:MM")
	}
	end, endErr := scheduler.ParseTimeOfDay(params.EndTime)
	if endErr != nil {
		vErr.add("end_time", "end time must be HH:MM")
	}
	if vErr.HasErrors() {
		return reschedulePlan{}, vErr
	}

	sessions, err := s.loadSessions(ctx, params.BatchID)
	if err != nil {
		return reschedulePlan{}, err
	}

	target, ok := findSession(sessions, params.SessionID)
	if !ok {
		return reschedulePlan{}, ErrNotFound
	}
	if !target.Status.Reschedulable() {
		return reschedulePlan{}, fmt.Errorf("%w: session is %s", ErrSessionNotReschedulable, target.Status)
	}

	if err := scheduler.ValidateTimeRange(start, end); err != nil {
		return reschedulePlan{}, err
	}

	plan := reschedulePlan{
		target: target,
		candidate: scheduler.Candidate{
			Date:      s.calendarDate(params.Date),
			StartTime: start,
			EndTime:   end,
		},
		occupied: make([]scheduler.Session, 0, len(sessions)),
		byID:     make(map[string]Session, len(sessions)),
	}
	for _, session := range sessions {
		plan.byID[session.ID] = session
		if session.Status == scheduler.StatusCancelled {
			continue
		}
		plan.occupied = append(plan.occupied, toSchedulerSession(session))
	}
	return plan, nil
}

func (s *BatchService) loadSessions(ctx context.Context, batchID string) ([]Session, error) {
	if s.sessions == nil {
		return nil, fmt.Errorf("session repository not configured")
	}
	if strings.TrimSpace(batchID) == "" {
		return nil, ErrNotFound
	}

	stored, err := s.sessions.ListSessions(ctx, batchID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	sessions := make([]Session, 0, len(stored))
	for _, record := range stored {
		session, err := s.fromPersistenceSession(record)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	numberSessions(sessions)
	return sessions, nil
}

func (s *BatchService) validateBatchInput(input BatchInput) (scheduler.TimeOfDay, scheduler.TimeOfDay, error) {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	vErr.merge(validateScheduleInput(input.Schedule))

	start, err := scheduler.ParseTimeOfDay(input.StartTime)
	if err != nil {
		vErr.add("start_time", "start time must be HH:MM")
	}
	end, err := scheduler.ParseTimeOfDay(input.EndTime)
	if err != nil {
		vErr.add("end_time", "end time must be HH:MM")
	}

	if vErr.HasErrors() {
		return 0, 0, vErr
	}
	if err := scheduler.ValidateTimeRange(start, end); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// validateScheduleInput checks the schedule fields shared by the batch form
// and the preview.
func validateScheduleInput(input BatchScheduleInput) *ValidationError {
	vErr := &ValidationError{}
	if input.StartDate.IsZero() {
		vErr.add("start_date", "start date is required")
	}
	if input.EndDate.IsZero() {
		vErr.add("end_date", "end date is required")
	}
	if input.SessionCount < 0 {
		vErr.add("session_count", "session count cannot be negative")
	}
	return vErr
}

// expandForBatch expands the schedule and enforces the session count rules
// that apply when a batch is saved.
func (s *BatchService) expandForBatch(input BatchScheduleInput) ([]time.Time, recurrence.Pattern, error) {
	pattern, err := recurrence.ParsePattern(input.Pattern)
	if err != nil {
		return nil, "", err
	}

	if pattern == recurrence.PatternManual && input.SessionCount <= 0 {
		return nil, "", newValidationError("session_count", "session count is required for manual schedules")
	}

	cfg := s.expansionConfig(input, pattern)
	dates, err := s.engine.Expand(cfg)
	if err != nil {
		return nil, "", err
	}
	s.metrics.ObserveExpansion(string(pattern), len(dates))

	if pattern != recurrence.PatternManual {
		if len(dates) == 0 {
			return nil, "", newValidationError("schedule", "no session dates fall within the selected range")
		}
		return dates, pattern, nil
	}

	if len(dates) > input.SessionCount {
		return nil, "", fmt.Errorf("%w: %d dates selected for %d sessions", recurrence.ErrSessionLimitExceeded, len(dates), input.SessionCount)
	}
	if len(dates) < input.SessionCount {
		return nil, "", newValidationError("manual_dates", fmt.Sprintf("select exactly %d dates", input.SessionCount))
	}
	for _, date := range dates {
		if date.Before(cfg.StartDate) || date.After(cfg.EndDate) {
			return nil, "", newValidationError("manual_dates", "manual dates must fall within the batch date range")
		}
	}
	return dates, pattern, nil
}

func (s *BatchService) expansionConfig(input BatchScheduleInput, pattern recurrence.Pattern) recurrence.Config {
	manual := make([]time.Time, 0, len(input.ManualDates))
	for _, d := range input.ManualDates {
		manual = append(manual, s.calendarDate(d))
	}
	return recurrence.Config{
		StartDate:    s.calendarDate(input.StartDate),
		EndDate:      s.calendarDate(input.EndDate),
		Pattern:      pattern,
		SessionCount: input.SessionCount,
		ManualDates:  manual,
	}
}

func (s *BatchService) buildSessions(batch Batch, dates []time.Time) []Session {
	sessions := make([]Session, 0, len(dates))
	for i, date := range dates {
		sessions = append(sessions, Session{
			ID:        s.idGenerator(),
			BatchID:   batch.ID,
			Number:    i + 1,
			Date:      date,
			StartTime: batch.StartTime,
			EndTime:   batch.EndTime,
			Status:    scheduler.StatusScheduled,
			CreatedAt: batch.UpdatedAt,
			UpdatedAt: batch.UpdatedAt,
		})
	}
	return sessions
}

// calendarDate keeps the year, month and day of t and places them at
// midnight in the engine location.
func (s *BatchService) calendarDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.engine.Location())
}

func (s *BatchService) fromPersistenceBatch(record persistence.Batch) (Batch, error) {
	start, err := scheduler.ParseTimeOfDay(record.StartTime)
	if err != nil {
		return Batch{}, fmt.Errorf("application: batch %s start time: %w", record.ID, err)
	}
	end, err := scheduler.ParseTimeOfDay(record.EndTime)
	if err != nil {
		return Batch{}, fmt.Errorf("application: batch %s end time: %w", record.ID, err)
	}
	return Batch{
		ID:           record.ID,
		Name:         record.Name,
		VenueID:      record.VenueID,
		PartnerID:    record.PartnerID,
		Pattern:      recurrence.Pattern(record.Pattern),
		StartDate:    s.calendarDate(record.StartDate),
		EndDate:      s.calendarDate(record.EndDate),
		SessionCount: record.SessionCount,
		StartTime:    start,
		EndTime:      end,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}, nil
}

func (s *BatchService) fromPersistenceSession(record persistence.Session) (Session, error) {
	start, err := scheduler.ParseTimeOfDay(record.StartTime)
	if err != nil {
		return Session{}, fmt.Errorf("application: session %s start time: %w", record.ID, err)
	}
	end, err := scheduler.ParseTimeOfDay(record.EndTime)
	if err != nil {
		return Session{}, fmt.Errorf("application: session %s end time: %w", record.ID, err)
	}
	status, err := scheduler.ParseStatus(record.Status)
	if err != nil {
		return Session{}, fmt.Errorf("application: session %s: %w", record.ID, err)
	}
	return Session{
		ID:        record.ID,
		BatchID:   record.BatchID,
		Date:      s.calendarDate(record.Date),
		StartTime: start,
		EndTime:   end,
		Status:    status,
		Notes:     record.Notes,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func toPersistenceBatch(batch Batch) persistence.Batch {
	return persistence.Batch{
		ID:           batch.ID,
		Name:         batch.Name,
		VenueID:      batch.VenueID,
		PartnerID:    batch.PartnerID,
		Pattern:      string(batch.Pattern),
		StartDate:    batch.StartDate,
		EndDate:      batch.EndDate,
		SessionCount: batch.SessionCount,
		StartTime:    clockString(batch.StartTime),
		EndTime:      clockString(batch.EndTime),
		CreatedAt:    batch.CreatedAt,
		UpdatedAt:    batch.UpdatedAt,
	}
}

func toPersistenceSessions(sessions []Session) []persistence.Session {
	out := make([]persistence.Session, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toPersistenceSession(session))
	}
	return out
}

func toPersistenceSession(session Session) persistence.Session {
	return persistence.Session{
		ID:        session.ID,
		BatchID:   session.BatchID,
		Date:      session.Date,
		StartTime: clockString(session.StartTime),
		EndTime:   clockString(session.EndTime),
		Status:    string(session.Status),
		Notes:     session.Notes,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func toSchedulerSession(session Session) scheduler.Session {
	var notes string
	if session.Notes != nil {
		notes = *session.Notes
	}
	return scheduler.Session{
		ID:        session.ID,
		Date:      session.Date,
		StartTime: session.StartTime,
		EndTime:   session.EndTime,
		Status:    session.Status,
		Notes:     notes,
	}
}

// clockString renders t in the stored "HH:MM:SS" form.
func clockString(t scheduler.TimeOfDay) string {
	return t.String() + ":00"
}

func numberSessions(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.Before(sessions[j].Date)
		}
		if sessions[i].StartTime != sessions[j].StartTime {
			return sessions[i].StartTime < sessions[j].StartTime
		}
		return sessions[i].ID < sessions[j].ID
	})
	for i := range sessions {
		sessions[i].Number = i + 1
	}
}

func findSession(sessions []Session, id string) (Session, bool) {
	for _, session := range sessions {
		if session.ID == id {
			return session, true
		}
	}
	return Session{}, false
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func logFailure(ctx context.Context, logger *slog.Logger, msg string, err error) {
	kind := ErrorKind(err)
	if kind == "unexpected" {
		logger.ErrorContext(ctx, msg, "error", err, "error_kind", kind)
		return
	}
	logger.WarnContext(ctx, msg, "error", err, "error_kind", kind)
}
