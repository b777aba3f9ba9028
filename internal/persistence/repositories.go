package persistence

import "context"

// BatchRepository stores batches together with their generated sessions.
type BatchRepository interface {
	CreateBatch(ctx context.Context, batch Batch, sessions []Session) error
	UpdateBatch(ctx context.Context, batch Batch, sessions []Session) error
	GetBatch(ctx context.Context, id string) (Batch, error)
	ListBatches(ctx context.Context) ([]Batch, error)
	DeleteBatch(ctx context.Context, id string) error
}

// SessionRepository exposes per-session reads and updates.
type SessionRepository interface {
	ListSessions(ctx context.Context, batchID string) ([]Session, error)
	GetSession(ctx context.Context, batchID, sessionID string) (Session, error)
	UpdateSession(ctx context.Context, session Session) error
}
