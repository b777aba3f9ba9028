package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/batch-scheduler/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary, migrated
// SQLite database.
type SQLiteHarness struct {
	Pool     *sqlite.ConnectionPool
	Batches  *sqlite.BatchRepository
	Sessions *sqlite.SessionRepository

	cleanup func()
}

// Close releases the database. It is safe to call more than once.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a database in a temporary directory and
// registers Close with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	ctx := context.Background()
	dsn := "file:" + filepath.Join(tb.TempDir(), "scheduler.db") + "?_pragma=foreign_keys(1)"

	pool, err := sqlite.Open(ctx, dsn)
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(ctx, nil); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:     pool,
		Batches:  sqlite.NewBatchRepository(pool),
		Sessions: sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
