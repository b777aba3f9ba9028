package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies every pending embedded migration. The migrate instance must
// not be closed: closing it closes the shared *sql.DB.
func (cp *ConnectionPool) Migrate(ctx context.Context, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("sqlite: load migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(cp.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite: create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("sqlite: initialise migrations: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sqlite: apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("sqlite: read schema version: %w", err)
	}
	if dirty {
		logger.WarnContext(ctx, "database schema is dirty", "version", version)
	} else {
		logger.InfoContext(ctx, "database schema migrated", "version", version)
	}

	return nil
}
