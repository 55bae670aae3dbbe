package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const userColumns = `id, email, name, role, password_hash, reset_token_hash, reset_token_expiry`

func (r *PostgresRepo) SaveUser(ctx context.Context, user models.User) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (email, name, role, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id;
	`

	var id int64

	err := r.db.QueryRow(ctx, query, user.Email, user.Name, user.Role, user.PassHash).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) User(ctx context.Context, email string) (models.User, error) {
	const op = "storage.postgres.User"

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1;`

	return scanUser(op, r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepo) UserByID(ctx context.Context, uid int64) (models.User, error) {
	const op = "storage.postgres.UserByID"

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1;`

	return scanUser(op, r.db.QueryRow(ctx, query, uid))
}

func (r *PostgresRepo) UserByResetToken(ctx context.Context, tokenHash string) (models.User, error) {
	const op = "storage.postgres.UserByResetToken"

	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token_hash = $1;`

	return scanUser(op, r.db.QueryRow(ctx, query, tokenHash))
}

func (r *PostgresRepo) UpdatePassword(ctx context.Context, uid int64, passHash string) error {
	const op = "storage.postgres.UpdatePassword"

	query := `UPDATE users SET password_hash = $1 WHERE id = $2`

	return r.execUser(ctx, op, query, passHash, uid)
}

func (r *PostgresRepo) SetResetToken(ctx context.Context, uid int64, tokenHash string, expiresAt time.Time) error {
	const op = "storage.postgres.SetResetToken"

	query := `UPDATE users SET reset_token_hash = $1, reset_token_expiry = $2 WHERE id = $3`

	return r.execUser(ctx, op, query, tokenHash, expiresAt, uid)
}

func (r *PostgresRepo) CompleteReset(ctx context.Context, uid int64, passHash string) error {
	const op = "storage.postgres.CompleteReset"

	query := `
		UPDATE users
		SET password_hash = $1, reset_token_hash = NULL, reset_token_expiry = NULL
		WHERE id = $2
	`

	return r.execUser(ctx, op, query, passHash, uid)
}

func (r *PostgresRepo) execUser(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if tag.RowsAffected() == 0 {
		return storage.ErrUserNotFound
	}

	return nil
}

func scanUser(op string, row pgx.Row) (models.User, error) {
	var (
		u         models.User
		resetHash *string
		resetExp  *time.Time
	)

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Role,
		&u.PassHash,
		&resetHash,
		&resetExp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if resetHash != nil {
		u.ResetTokenHash = *resetHash
	}
	if resetExp != nil {
		u.ResetTokenExpiry = *resetExp
	}

	return u, nil
}
