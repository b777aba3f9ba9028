package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/example/batch-scheduler/internal/persistence"
	"github.com/example/batch-scheduler/internal/recurrence"
	"github.com/example/batch-scheduler/internal/scheduler"
)

type memoryStore struct {
	batches  map[string]persistence.Batch
	sessions map[string][]persistence.Session

	createErr error
	updateErr error
	listCalls int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		batches:  make(map[string]persistence.Batch),
		sessions: make(map[string][]persistence.Session),
	}
}

func (m *memoryStore) CreateBatch(ctx context.Context, batch persistence.Batch, sessions []persistence.Session) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.batches[batch.ID]; ok {
		return persistence.ErrDuplicate
	}
	m.batches[batch.ID] = batch
	m.sessions[batch.ID] = append([]persistence.Session(nil), sessions...)
	return nil
}

func (m *memoryStore) UpdateBatch(ctx context.Context, batch persistence.Batch, sessions []persistence.Session) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.batches[batch.ID]; !ok {
		return persistence.ErrNotFound
	}
	m.batches[batch.ID] = batch
	m.sessions[batch.ID] = append([]persistence.Session(nil), sessions...)
	return nil
}

func (m *memoryStore) GetBatch(ctx context.Context, id string) (persistence.Batch, error) {
	batch, ok := m.batches[id]
	if !ok {
		return persistence.Batch{}, persistence.ErrNotFound
	}
	return batch, nil
}

func (m *memoryStore) ListBatches(ctx context.Context) ([]persistence.Batch, error) {
	out := make([]persistence.Batch, 0, len(m.batches))
	for _, batch := range m.batches {
		out = append(out, batch)
	}
	return out, nil
}

func (m *memoryStore) DeleteBatch(ctx context.Context, id string) error {
	if _, ok := m.batches[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.batches, id)
	delete(m.sessions, id)
	return nil
}

func (m *memoryStore) ListSessions(ctx context.Context, batchID string) ([]persistence.Session, error) {
	m.listCalls++
	if _, ok := m.batches[batchID]; !ok {
		return nil, persistence.ErrNotFound
	}
	out := append([]persistence.Session(nil), m.sessions[batchID]...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (m *memoryStore) GetSession(ctx context.Context, batchID, sessionID string) (persistence.Session, error) {
	for _, session := range m.sessions[batchID] {
		if session.ID == sessionID {
			return session, nil
		}
	}
	return persistence.Session{}, persistence.ErrNotFound
}

func (m *memoryStore) UpdateSession(ctx context.Context, session persistence.Session) error {
	list := m.sessions[session.BatchID]
	for i := range list {
		if list[i].ID == session.ID {
			list[i] = session
			return nil
		}
	}
	return persistence.ErrNotFound
}

type metricsStub struct {
	expansions  int
	conflicts   int
	rescheduled int
	hits        int
	misses      int
}

func (m *metricsStub) ObserveExpansion(string, int) { m.expansions++ }
func (m *metricsStub) ConflictDetected()            { m.conflicts++ }
func (m *metricsStub) SessionRescheduled()          { m.rescheduled++ }
func (m *metricsStub) SessionCacheLookup(hit bool) {
	if hit {
		m.hits++
		return
	}
	m.misses++
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
}

func date(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, time.UTC)
}

func newTestService(store *memoryStore, opts ...BatchServiceOption) *BatchService {
	return NewBatchService(store, store, recurrence.NewEngine(nil), sequentialIDs(), fixedNow, opts...)
}

func mwfInput() BatchInput {
	return BatchInput{
		Name: "Spring cohort",
		Schedule: BatchScheduleInput{
			StartDate: date(time.April, 1),
			EndDate:   date(time.April, 10),
			Pattern:   "MWF",
		},
		StartTime: "09:00",
		EndTime:   "10:30",
	}
}

func TestBatchService_CreateBatch(t *testing.T) {
	t.Run("expands weekday pattern into sessions", func(t *testing.T) {
		store := newMemoryStore()
		svc := newTestService(store)

		batch, err := svc.CreateBatch(context.Background(), mwfInput())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.ID != "id-1" {
			t.Fatalf("expected id-1, got %s", batch.ID)
		}
		if batch.SessionCount != 4 {
			t.Fatalf("expected 4 sessions, got %d", batch.SessionCount)
		}

		stored := store.sessions[batch.ID]
		want := []time.Time{date(time.April, 2), date(time.April, 4), date(time.April, 7), date(time.April, 9)}
		if len(stored) != len(want) {
			t.Fatalf("expected %d stored sessions, got %d", len(want), len(stored))
		}
		for i, session := range stored {
			if !session.Date.Equal(want[i]) {
				t.Errorf("session %d: expected %v, got %v", i, want[i], session.Date)
			}
			if session.StartTime != "09:00:00" || session.EndTime != "10:30:00" {
				t.Errorf("session %d: unexpected times %s-%s", i, session.StartTime, session.EndTime)
			}
			if session.Status != string(scheduler.StatusScheduled) {
				t.Errorf("session %d: unexpected status %s", i, session.Status)
			}
		}
	})

	t.Run("collects field errors", func(t *testing.T) {
		svc := newTestService(newMemoryStore())

		_, err := svc.CreateBatch(context.Background(), BatchInput{StartTime: "9am"})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected validation error, got %v", err)
		}
		for _, field := range []string{"name", "start_date", "end_date", "start_time", "end_time"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected field error for %s", field)
			}
		}
	})

	t.Run("rejects inverted time range", func(t *testing.T) {
		svc := newTestService(newMemoryStore())
		input := mwfInput()
		input.StartTime, input.EndTime = "11:00", "10:00"

		if _, err := svc.CreateBatch(context.Background(), input); !errors.Is(err, scheduler.ErrTimeOrder) {
			t.Fatalf("expected ErrTimeOrder, got %v", err)
		}
	})

	t.Run("passes through expansion errors", func(t *testing.T) {
		svc := newTestService(newMemoryStore())

		input := mwfInput()
		input.Schedule.Pattern = "daily"
		if _, err := svc.CreateBatch(context.Background(), input); !errors.Is(err, recurrence.ErrInvalidPattern) {
			t.Fatalf("expected ErrInvalidPattern, got %v", err)
		}

		input = mwfInput()
		input.Schedule.StartDate, input.Schedule.EndDate = date(time.April, 10), date(time.April, 1)
		if _, err := svc.CreateBatch(context.Background(), input); !errors.Is(err, recurrence.ErrInvalidRange) {
			t.Fatalf("expected ErrInvalidRange, got %v", err)
		}
	})

	t.Run("rejects empty weekday expansion", func(t *testing.T) {
		svc := newTestService(newMemoryStore())
		input := mwfInput()
		input.Schedule.StartDate, input.Schedule.EndDate = date(time.April, 1), date(time.April, 1)

		_, err := svc.CreateBatch(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["schedule"] == "" {
			t.Fatalf("expected schedule validation error, got %v", err)
		}
	})

	t.Run("manual schedule requires exact date count", func(t *testing.T) {
		svc := newTestService(newMemoryStore())
		input := mwfInput()
		input.Schedule.Pattern = "manual"
		input.Schedule.SessionCount = 2

		input.Schedule.ManualDates = []time.Time{date(time.April, 3)}
		var vErr *ValidationError
		if _, err := svc.CreateBatch(context.Background(), input); !errors.As(err, &vErr) {
			t.Fatalf("expected validation error for too few dates, got %v", err)
		}

		input.Schedule.ManualDates = []time.Time{date(time.April, 3), date(time.April, 5), date(time.April, 8)}
		if _, err := svc.CreateBatch(context.Background(), input); !errors.Is(err, recurrence.ErrSessionLimitExceeded) {
			t.Fatalf("expected ErrSessionLimitExceeded, got %v", err)
		}

		input.Schedule.ManualDates = []time.Time{date(time.April, 8), date(time.April, 3), date(time.April, 8), date(time.April, 5)}
		if _, err := svc.CreateBatch(context.Background(), input); !errors.Is(err, recurrence.ErrSessionLimitExceeded) {
			t.Fatalf("expected duplicates to be collapsed before counting, got %v", err)
		}

		input.Schedule.ManualDates = []time.Time{date(time.April, 8), date(time.April, 3), date(time.April, 8)}
		batch, err := svc.CreateBatch(context.Background(), input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if batch.SessionCount != 2 || batch.Pattern != recurrence.PatternManual {
			t.Fatalf("unexpected batch: %+v", batch)
		}
	})

	t.Run("manual dates outside range are rejected", func(t *testing.T) {
		svc := newTestService(newMemoryStore())
		input := mwfInput()
		input.Schedule.Pattern = "manual"
		input.Schedule.SessionCount = 1
		input.Schedule.ManualDates = []time.Time{date(time.May, 1)}

		_, err := svc.CreateBatch(context.Background(), input)
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["manual_dates"] == "" {
			t.Fatalf("expected manual_dates validation error, got %v", err)
		}
	})

	t.Run("maps duplicate identifiers", func(t *testing.T) {
		store := newMemoryStore()
		store.createErr = persistence.ErrDuplicate
		svc := newTestService(store)

		if _, err := svc.CreateBatch(context.Background(), mwfInput()); !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestBatchService_UpdateBatch(t *testing.T) {
	t.Run("regenerates sessions", func(t *testing.T) {
		store := newMemoryStore()
		svc := newTestService(store)
		batch, err := svc.CreateBatch(context.Background(), mwfInput())
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		input := mwfInput()
		input.Name = "Renamed"
		input.Schedule.Pattern = "weekend"
		updated, err := svc.UpdateBatch(context.Background(), batch.ID, input)
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if updated.Name != "Renamed" || updated.Pattern != recurrence.PatternWeekend {
			t.Fatalf("unexpected batch: %+v", updated)
		}
		if updated.SessionCount != 2 || len(store.sessions[batch.ID]) != 2 {
			t.Fatalf("expected 2 weekend sessions, got %d", len(store.sessions[batch.ID]))
		}
	})

	t.Run("refuses when a session is completed", func(t *testing.T) {
		store := newMemoryStore()
		svc := newTestService(store)
		batch, err := svc.CreateBatch(context.Background(), mwfInput())
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		store.sessions[batch.ID][0].Status = string(scheduler.StatusCompleted)

		_, err = svc.UpdateBatch(context.Background(), batch.ID, mwfInput())
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["sessions"] == "" {
			t.Fatalf("expected sessions validation error, got %v", err)
		}
	})

	t.Run("unknown batch", func(t *testing.T) {
		svc := newTestService(newMemoryStore())
		if _, err := svc.UpdateBatch(context.Background(), "missing", mwfInput()); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBatchService_GetListDelete(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	later := mwfInput()
	later.Schedule.StartDate = date(time.April, 7)
	second, err := svc.CreateBatch(context.Background(), later)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	first, err := svc.CreateBatch(context.Background(), mwfInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := svc.GetBatch(context.Background(), first.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.StartTime.String() != "09:00" || got.EndTime.String() != "10:30" {
		t.Fatalf("unexpected times %s-%s", got.StartTime, got.EndTime)
	}

	list, err := svc.ListBatches(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
		t.Fatalf("unexpected order: %+v", list)
	}

	if err := svc.DeleteBatch(context.Background(), first.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := svc.GetBatch(context.Background(), first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteBatch(context.Background(), first.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestBatchService_ListSessions(t *testing.T) {
	store := newMemoryStore()
	metrics := &metricsStub{}
	svc := newTestService(store, WithSessionCache(NewSessionCache(8, time.Minute)), WithMetrics(metrics))

	batch, err := svc.CreateBatch(context.Background(), mwfInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sessions, err := svc.ListSessions(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for i, session := range sessions {
		if session.Number != i+1 {
			t.Errorf("expected number %d, got %d", i+1, session.Number)
		}
	}

	sessions[0].Status = scheduler.StatusCancelled
	again, err := svc.ListSessions(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if again[0].Status != scheduler.StatusScheduled {
		t.Fatalf("cached sessions must not alias caller slices")
	}
	if store.listCalls != 1 || metrics.hits != 1 || metrics.misses != 1 {
		t.Fatalf("expected one repository read and one cache hit, got calls=%d hits=%d misses=%d", store.listCalls, metrics.hits, metrics.misses)
	}

	if _, err := svc.ListSessions(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBatchService_RescheduleSession(t *testing.T) {
	setup := func(t *testing.T) (*BatchService, *memoryStore, []Session, *metricsStub) {
		t.Helper()
		store := newMemoryStore()
		metrics := &metricsStub{}
		svc := newTestService(store, WithSessionCache(NewSessionCache(8, time.Minute)), WithMetrics(metrics))
		batch, err := svc.CreateBatch(context.Background(), mwfInput())
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		sessions, err := svc.ListSessions(context.Background(), batch.ID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		return svc, store, sessions, metrics
	}

	t.Run("moves session and records reason", func(t *testing.T) {
		svc, store, sessions, metrics := setup(t)
		target := sessions[0]

		moved, err := svc.RescheduleSession(context.Background(), RescheduleParams{
			BatchID:   target.BatchID,
			SessionID: target.ID,
			Date:      date(time.April, 5),
			StartTime: "14:00",
			EndTime:   "15:30",
			Reason:    " trainer unavailable ",
		})
		if err != nil {
			t.Fatalf("reschedule failed: %v", err)
		}
		if moved.Status != scheduler.StatusRescheduled {
			t.Fatalf("expected rescheduled status, got %s", moved.Status)
		}
		if moved.Notes == nil || *moved.Notes != "trainer unavailable" {
			t.Fatalf("expected reason in notes, got %v", moved.Notes)
		}
		if metrics.rescheduled != 1 {
			t.Fatalf("expected reschedule metric")
		}

		stored, _ := store.GetSession(context.Background(), target.BatchID, target.ID)
		if !stored.Date.Equal(date(time.April, 5)) || stored.StartTime != "14:00:00" || stored.EndTime != "15:30:00" {
			t.Fatalf("unexpected stored session: %+v", stored)
		}

		refreshed, err := svc.ListSessions(context.Background(), target.BatchID)
		if err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if refreshed[1].ID != target.ID || refreshed[1].Number != 2 {
			t.Fatalf("expected moved session to be renumbered second, got %+v", refreshed[1])
		}
	})

	t.Run("detects overlap with another session", func(t *testing.T) {
		svc, store, sessions, metrics := setup(t)
		target := sessions[0]
		other := sessions[1]

		params := RescheduleParams{
			BatchID:   target.BatchID,
			SessionID: target.ID,
			Date:      other.Date,
			StartTime: "10:00",
			EndTime:   "11:00",
		}

		conflict, err := svc.CheckConflict(context.Background(), params)
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if conflict == nil || conflict.ID != other.ID || conflict.Number != 2 {
			t.Fatalf("expected conflict with session 2, got %+v", conflict)
		}

		_, err = svc.RescheduleSession(context.Background(), params)
		var cErr *scheduler.ConflictError
		if !errors.As(err, &cErr) || cErr.With.ID != other.ID {
			t.Fatalf("expected conflict error, got %v", err)
		}
		if metrics.conflicts != 2 {
			t.Fatalf("expected two conflict metrics, got %d", metrics.conflicts)
		}

		stored, _ := store.GetSession(context.Background(), target.BatchID, target.ID)
		if stored.Status != string(scheduler.StatusScheduled) {
			t.Fatalf("conflicting reschedule must not persist, got %+v", stored)
		}
	})

	t.Run("touching ranges and own slot are allowed", func(t *testing.T) {
		svc, _, sessions, _ := setup(t)
		target := sessions[0]

		conflict, err := svc.CheckConflict(context.Background(), RescheduleParams{
			BatchID: target.BatchID, SessionID: target.ID,
			Date: sessions[1].Date, StartTime: "10:30", EndTime: "11:30",
		})
		if err != nil || conflict != nil {
			t.Fatalf("expected no conflict for touching range, got %+v %v", conflict, err)
		}

		conflict, err = svc.CheckConflict(context.Background(), RescheduleParams{
			BatchID: target.BatchID, SessionID: target.ID,
			Date: target.Date, StartTime: "09:30:00", EndTime: "10:00:00",
		})
		if err != nil || conflict != nil {
			t.Fatalf("expected no conflict with own slot, got %+v %v", conflict, err)
		}
	})

	t.Run("cancelled sessions do not occupy their slot", func(t *testing.T) {
		svc, store, sessions, _ := setup(t)
		store.sessions[sessions[1].BatchID][1].Status = string(scheduler.StatusCancelled)

		_, err := svc.RescheduleSession(context.Background(), RescheduleParams{
			BatchID: sessions[0].BatchID, SessionID: sessions[0].ID,
			Date: sessions[1].Date, StartTime: "09:00", EndTime: "10:30",
		})
		if err != nil {
			t.Fatalf("expected cancelled slot to be free, got %v", err)
		}
	})

	t.Run("terminal sessions are refused", func(t *testing.T) {
		svc, store, sessions, _ := setup(t)
		store.sessions[sessions[0].BatchID][0].Status = string(scheduler.StatusCompleted)

		_, err := svc.RescheduleSession(context.Background(), RescheduleParams{
			BatchID: sessions[0].BatchID, SessionID: sessions[0].ID,
			Date: date(time.April, 3), StartTime: "09:00", EndTime: "10:00",
		})
		if !errors.Is(err, ErrSessionNotReschedulable) {
			t.Fatalf("expected ErrSessionNotReschedulable, got %v", err)
		}
	})

	t.Run("validates input", func(t *testing.T) {
		svc, _, sessions, _ := setup(t)
		target := sessions[0]

		_, err := svc.RescheduleSession(context.Background(), RescheduleParams{
			BatchID: target.BatchID, SessionID: target.ID, StartTime: "x",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || len(vErr.FieldErrors) != 3 {
			t.Fatalf("expected three field errors, got %v", err)
		}

		_, err = svc.RescheduleSession(context.Background(), RescheduleParams{
			BatchID: target.BatchID, SessionID: target.ID,
			Date: date(time.April, 3), StartTime: "10:00", EndTime: "10:00",
		})
		if !errors.Is(err, scheduler.ErrTimeOrder) {
			t.Fatalf("expected ErrTimeOrder, got %v", err)
		}

		_, err = svc.RescheduleSession(context.Background(), RescheduleParams{
			BatchID: target.BatchID, SessionID: "missing",
			Date: date(time.April, 3), StartTime: "09:00", EndTime: "10:00",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestBatchService_SetSessionStatus(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)
	batch, err := svc.CreateBatch(context.Background(), mwfInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	sessions, err := svc.ListSessions(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	notes := "attendance taken"
	done, err := svc.SetSessionStatus(context.Background(), StatusParams{
		BatchID: batch.ID, SessionID: sessions[0].ID, Status: "completed", Notes: &notes,
	})
	if err != nil {
		t.Fatalf("status update failed: %v", err)
	}
	if done.Status != scheduler.StatusCompleted || done.Notes == nil || *done.Notes != notes {
		t.Fatalf("unexpected session: %+v", done)
	}
	if done.Number != 1 {
		t.Fatalf("expected session number 1, got %d", done.Number)
	}
	stored, err := store.GetSession(context.Background(), batch.ID, sessions[0].ID)
	if err != nil || stored.Status != "completed" {
		t.Fatalf("expected stored completed status, got %+v (%v)", stored, err)
	}

	_, err = svc.SetSessionStatus(context.Background(), StatusParams{
		BatchID: batch.ID, SessionID: "missing", Status: "cancelled",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown session, got %v", err)
	}

	_, err = svc.SetSessionStatus(context.Background(), StatusParams{
		BatchID: batch.ID, SessionID: sessions[0].ID, Status: "cancelled",
	})
	if !errors.Is(err, ErrSessionNotReschedulable) {
		t.Fatalf("expected ErrSessionNotReschedulable, got %v", err)
	}

	_, err = svc.SetSessionStatus(context.Background(), StatusParams{
		BatchID: batch.ID, SessionID: sessions[1].ID, Status: "rescheduled",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.FieldErrors["status"] == "" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestBatchService_PreviewSchedule(t *testing.T) {
	metrics := &metricsStub{}
	svc := newTestService(newMemoryStore(), WithMetrics(metrics))

	dates, err := svc.PreviewSchedule(BatchScheduleInput{
		StartDate: date(time.April, 1),
		EndDate:   date(time.April, 10),
		Pattern:   "TTS",
	})
	if err != nil {
		t.Fatalf("preview failed: %v", err)
	}
	want := []time.Time{date(time.April, 1), date(time.April, 3), date(time.April, 5), date(time.April, 8), date(time.April, 10)}
	if len(dates) != len(want) {
		t.Fatalf("expected %d dates, got %v", len(want), dates)
	}
	for i := range want {
		if !dates[i].Equal(want[i]) {
			t.Errorf("date %d: expected %v, got %v", i, want[i], dates[i])
		}
	}
	if metrics.expansions != 1 {
		t.Fatalf("expected expansion metric")
	}

	manual, err := svc.PreviewSchedule(BatchScheduleInput{
		StartDate:   date(time.April, 1),
		EndDate:     date(time.April, 10),
		Pattern:     "manual",
		ManualDates: []time.Time{date(time.April, 9), date(time.April, 2), date(time.April, 9)},
	})
	if err != nil || len(manual) != 2 || !manual[0].Equal(date(time.April, 2)) {
		t.Fatalf("unexpected manual preview %v (%v)", manual, err)
	}
}

func TestBatchService_PreviewSchedule_RequiresDates(t *testing.T) {
	metrics := &metricsStub{}
	svc := newTestService(newMemoryStore(), WithMetrics(metrics))

	tests := []struct {
		name  string
		input BatchScheduleInput
		field string
	}{
		{
			name:  "missing start date",
			input: BatchScheduleInput{EndDate: date(time.April, 10), Pattern: "MWF"},
			field: "start_date",
		},
		{
			name:  "missing end date",
			input: BatchScheduleInput{StartDate: date(time.April, 1), Pattern: "MWF"},
			field: "end_date",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dates, err := svc.PreviewSchedule(tc.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors[tc.field] == "" {
				t.Fatalf("expected %s validation error, got %v (%d dates)", tc.field, err, len(dates))
			}
			if errors.Is(err, recurrence.ErrInvalidRange) {
				t.Fatalf("expected a field error rather than a range error")
			}
		})
	}
	if metrics.expansions != 0 {
		t.Fatalf("expected no expansion for rejected previews, got %d", metrics.expansions)
	}
}

func TestBatchService_CreateBatch_ReportsAllMissingFields(t *testing.T) {
	svc := newTestService(newMemoryStore())

	input := mwfInput()
	input.Name = " "
	input.Schedule.StartDate = time.Time{}
	input.Schedule.SessionCount = -1

	_, err := svc.CreateBatch(context.Background(), input)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"name", "start_date", "session_count"} {
		if vErr.FieldErrors[field] == "" {
			t.Errorf("expected %s error, got %v", field, vErr.FieldErrors)
		}
	}
	if _, ok := vErr.FieldErrors["end_date"]; ok {
		t.Errorf("unexpected end_date error: %v", vErr.FieldErrors)
	}
}

func TestBatchService_SelectManualDate(t *testing.T) {
	svc := newTestService(newMemoryStore())

	selected, err := svc.SelectManualDate(nil, date(time.April, 4), 2)
	if err != nil {
		t.Fatalf("select failed: %v", err)
	}
	selected, err = svc.SelectManualDate(selected, date(time.April, 2), 2)
	if err != nil || len(selected) != 2 || !selected[0].Equal(date(time.April, 2)) {
		t.Fatalf("unexpected selection %v (%v)", selected, err)
	}

	if _, err := svc.SelectManualDate(selected, date(time.April, 8), 2); !errors.Is(err, recurrence.ErrSessionLimitExceeded) {
		t.Fatalf("expected ErrSessionLimitExceeded, got %v", err)
	}

	selected, err = svc.SelectManualDate(selected, date(time.April, 4), 2)
	if err != nil || len(selected) != 1 {
		t.Fatalf("expected toggle to remove date, got %v (%v)", selected, err)
	}
}
