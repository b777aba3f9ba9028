package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/batch-scheduler/internal/persistence"
)

// BatchRepository implements persistence.BatchRepository using SQLite.
type BatchRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewBatchRepository creates a new SQLite batch repository.
func NewBatchRepository(pool *ConnectionPool) *BatchRepository {
	return &BatchRepository{pool: pool, mapper: pool.mapper}
}

const batchColumns = `id, name, venue_id, partner_id, pattern, start_date, end_date, session_count, start_time, end_time, created_at, updated_at`

// CreateBatch inserts the batch and its sessions in a single transaction.
func (r *BatchRepository) CreateBatch(ctx context.Context, batch persistence.Batch, sessions []persistence.Session) error {
	if strings.TrimSpace(batch.ID) == "" {
		return persistence.ErrConstraintViolation
	}

	now := r.pool.timestamp()
	batch.CreatedAt = now
	batch.UpdatedAt = now

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO batches (`+batchColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batch.ID,
			batch.Name,
			nullString(batch.VenueID),
			nullString(batch.PartnerID),
			batch.Pattern,
			batch.StartDate.Format(dateLayout),
			batch.EndDate.Format(dateLayout),
			batch.SessionCount,
			batch.StartTime,
			batch.EndTime,
			batch.CreatedAt.Format(timestampLayout),
			batch.UpdatedAt.Format(timestampLayout),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		return insertSessions(ctx, tx, r.mapper, batch.ID, sessions, now)
	})
}

// UpdateBatch rewrites the batch row and replaces its session list.
func (r *BatchRepository) UpdateBatch(ctx context.Context, batch persistence.Batch, sessions []persistence.Session) error {
	now := r.pool.timestamp()

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE batches
			SET name = ?, venue_id = ?, partner_id = ?, pattern = ?, start_date = ?, end_date = ?,
			    session_count = ?, start_time = ?, end_time = ?, updated_at = ?
			WHERE id = ?`,
			batch.Name,
			nullString(batch.VenueID),
			nullString(batch.PartnerID),
			batch.Pattern,
			batch.StartDate.Format(dateLayout),
			batch.EndDate.Format(dateLayout),
			batch.SessionCount,
			batch.StartTime,
			batch.EndTime,
			now.Format(timestampLayout),
			batch.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		if affected, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		} else if affected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE batch_id = ?`, batch.ID); err != nil {
			return r.mapper.MapError(err)
		}

		return insertSessions(ctx, tx, r.mapper, batch.ID, sessions, now)
	})
}

// GetBatch retrieves a batch by ID.
func (r *BatchRepository) GetBatch(ctx context.Context, id string) (persistence.Batch, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+batchColumns+` FROM batches WHERE id = ?`, id)
	batch, err := scanBatch(row)
	if err != nil {
		return persistence.Batch{}, r.mapper.MapError(err)
	}
	return batch, nil
}

// ListBatches returns all batches ordered by start date then name.
func (r *BatchRepository) ListBatches(ctx context.Context) ([]persistence.Batch, error) {
	rows, err := r.pool.db.QueryContext(ctx, `SELECT `+batchColumns+` FROM batches ORDER BY start_date ASC, name ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var batches []persistence.Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return batches, nil
}

// DeleteBatch removes a batch and its sessions.
func (r *BatchRepository) DeleteBatch(ctx context.Context, id string) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE batch_id = ?`, id); err != nil {
			return r.mapper.MapError(err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
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
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (persistence.Batch, error) {
	var (
		batch                persistence.Batch
		venueID, partnerID   sql.NullString
		startDate, endDate   string
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&batch.ID,
		&batch.Name,
		&venueID,
		&partnerID,
		&batch.Pattern,
		&startDate,
		&endDate,
		&batch.SessionCount,
		&batch.StartTime,
		&batch.EndTime,
		&createdAt,
		&updatedAt,
	); err != nil {
		return persistence.Batch{}, err
	}

	batch.VenueID = stringPtr(venueID)
	batch.PartnerID = stringPtr(partnerID)

	var err error
	if batch.StartDate, err = parseDate(startDate); err != nil {
		return persistence.Batch{}, err
	}
	if batch.EndDate, err = parseDate(endDate); err != nil {
		return persistence.Batch{}, err
	}
	if batch.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Batch{}, err
	}
	if batch.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Batch{}, err
	}
	return batch, nil
}
