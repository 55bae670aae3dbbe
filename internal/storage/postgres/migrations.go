package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

func setupGoose() error {
	goose.SetBaseFS(migrations)

	return goose.SetDialect("pgx")
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sql.DB) error {
	const op = "storage.postgres.Migrate"

	if err := setupGoose(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *sql.DB) error {
	const op = "storage.postgres.Rollback"

	if err := setupGoose(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.DownContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MigrationStatus logs the state of every migration through goose's logger.
func MigrationStatus(ctx context.Context, db *sql.DB) error {
	const op = "storage.postgres.MigrationStatus"

	if err := setupGoose(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := goose.StatusContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
