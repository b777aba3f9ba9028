package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/batch-scheduler/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
type SessionRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool, mapper: pool.mapper}
}

const sessionColumns = `id, batch_id, session_date, start_time, end_time, status, notes, created_at, updated_at`

// ListSessions returns the sessions of a batch ordered by date and start time.
// An unknown batch yields ErrNotFound; a batch without sessions yields an
// empty slice.
func (r *SessionRepository) ListSessions(ctx context.Context, batchID string) ([]persistence.Session, error) {
	var exists int
	err := r.pool.db.QueryRowContext(ctx, `SELECT 1 FROM batches WHERE id = ?`, batchID).Scan(&exists)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}

	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM sessions
		WHERE batch_id = ?
		ORDER BY session_date ASC, start_time ASC, id ASC`, batchID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	sessions := make([]persistence.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return sessions, nil
}

// GetSession retrieves a single session belonging to the given batch.
func (r *SessionRepository) GetSession(ctx context.Context, batchID, sessionID string) (persistence.Session, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE batch_id = ? AND id = ?`, batchID, sessionID)
	session, err := scanSession(row)
	if err != nil {
		return persistence.Session{}, r.mapper.MapError(err)
	}
	return session, nil
}

// UpdateSession persists the date, times, status, and notes of a session.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) error {
	if strings.TrimSpace(session.ID) == "" || strings.TrimSpace(session.BatchID) == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE sessions
		SET session_date = ?, start_time = ?, end_time = ?, status = ?, notes = ?, updated_at = ?
		WHERE id = ? AND batch_id = ?`,
		session.Date.Format(dateLayout),
		session.StartTime,
		session.EndTime,
		session.Status,
		nullString(session.Notes),
		r.pool.timestamp().Format(timestampLayout),
		session.ID,
		session.BatchID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func insertSessions(ctx context.Context, tx *sql.Tx, mapper *ErrorMapper, batchID string, sessions []persistence.Session, now time.Time) error {
	if len(sessions) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return mapper.MapError(err)
	}
	defer stmt.Close()

	stamp := now.Format(timestampLayout)
	for _, session := range sessions {
		if strings.TrimSpace(session.ID) == "" {
			return persistence.ErrConstraintViolation
		}
		status := session.Status
		if status == "" {
			status = "scheduled"
		}
		if _, err := stmt.ExecContext(ctx,
			session.ID,
			batchID,
			session.Date.Format(dateLayout),
			session.StartTime,
			session.EndTime,
			status,
			nullString(session.Notes),
			stamp,
			stamp,
		); err != nil {
			return mapper.MapError(err)
		}
	}
	return nil
}

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		session              persistence.Session
		date                 string
		notes                sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&session.ID,
		&session.BatchID,
		&date,
		&session.StartTime,
		&session.EndTime,
		&session.Status,
		&notes,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Session{}, err
	}

	session.Notes = stringPtr(notes)

	var err error
	if session.Date, err = parseDate(date); err != nil {
		return persistence.Session{}, err
	}
	if session.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if session.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	return session, nil
}
