package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"

	"github.com/jackc/pgx/v5"
)

func (r *PostgresRepo) SaveSession(ctx context.Context, session models.Session) error {
	const op = "storage.postgres.SaveSession"

	const query = `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(ctx, query, session.ID, session.UserID, session.ExpiresAt); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) Session(ctx context.Context, id string) (models.Session, error) {
	const op = "storage.postgres.Session"

	const query = `SELECT id, user_id, expires_at FROM sessions WHERE id = $1`

	var s models.Session

	err := r.db.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, storage.ErrSessionNotFound
		}

		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *PostgresRepo) ExtendSession(ctx context.Context, id string, expiresAt time.Time) error {
	const op = "storage.postgres.ExtendSession"

	const query = `UPDATE sessions SET expires_at = $1 WHERE id = $2`

	tag, err := r.db.Exec(ctx, query, expiresAt, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrSessionNotFound
	}

	return nil
}

func (r *PostgresRepo) DeleteSession(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteSession"

	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *PostgresRepo) DeleteUserSessions(ctx context.Context, uid int64) error {
	const op = "storage.postgres.DeleteUserSessions"

	if _, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PurgeExpiredSessions removes sessions that expired before now and reports how many.
func (r *PostgresRepo) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	const op = "storage.postgres.PurgeExpiredSessions"

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return tag.RowsAffected(), nil
}
