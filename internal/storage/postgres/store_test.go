package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "email", "name", "role", "password_hash", "reset_token_hash", "reset_token_expiry"}

func newRepoWithMock(t *testing.T) (*PostgresRepo, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return NewWithDB(mock), mock
}

func q(sql string) string {
	return regexp.QuoteMeta(sql)
}

func TestSaveUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q("INSERT INTO users (email, name, role, password_hash)")).
		WithArgs("a@x.com", "A", "customer", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.SaveUser(context.Background(), models.User{Email: "a@x.com", Name: "A", Role: "customer", PassHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestSaveUser_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs("a@x.com", "A", "customer", "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.SaveUser(context.Background(), models.User{Email: "a@x.com", Name: "A", Role: "customer", PassHash: "hash"})
	assert.ErrorIs(t, err, storage.ErrUserExists)
}

func TestSaveUser_OtherError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q("INSERT INTO users")).
		WithArgs("a@x.com", "A", "customer", "hash").
		WillReturnError(errors.New("db down"))

	_, err := repo.SaveUser(context.Background(), models.User{Email: "a@x.com", Name: "A", Role: "customer", PassHash: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, storage.ErrUserExists)
	assert.Contains(t, err.Error(), "db down")
}

func TestUser_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q("FROM users WHERE email = $1")).
		WithArgs("a@x.com").
		WillReturnRows(pgxmock.NewRows(userRowColumns))

	_, err := repo.User(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestUserByResetToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	hash := "reset-hash"
	expiry := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("FROM users WHERE reset_token_hash = $1")).
		WithArgs(hash).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(int64(7), "a@x.com", "A", "customer", "hash", &hash, &expiry))

	u, err := repo.UserByResetToken(context.Background(), hash)
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
	assert.Equal(t, hash, u.ResetTokenHash)
	assert.True(t, expiry.Equal(u.ResetTokenExpiry))
}

func TestUserByID_NoPendingReset(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q("FROM users WHERE id = $1")).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(userRowColumns).
			AddRow(int64(7), "a@x.com", "A", "customer", "hash", (*string)(nil), (*time.Time)(nil)))

	u, err := repo.UserByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, u.ResetTokenHash)
	assert.True(t, u.ResetTokenExpiry.IsZero())
}

func TestCompleteReset_ClearsResetToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(q("SET password_hash = $1, reset_token_hash = NULL, reset_token_expiry = NULL")).
		WithArgs("new-hash", int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.CompleteReset(context.Background(), 7, "new-hash"))
}

func TestCompleteReset_UnknownUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(q("UPDATE users")).
		WithArgs("new-hash", int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.CompleteReset(context.Background(), 99, "new-hash")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestSetResetToken(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	expiry := time.Date(2025, 3, 1, 13, 0, 0, 0, time.UTC)

	mock.ExpectExec(q("UPDATE users SET reset_token_hash = $1, reset_token_expiry = $2 WHERE id = $3")).
		WithArgs("reset-hash", expiry, int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetResetToken(context.Background(), 7, "reset-hash", expiry))
}

func TestSaveAndLoadSession(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	session := models.Session{ID: "abc", UserID: 7, ExpiresAt: time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)}

	mock.ExpectExec(q("INSERT INTO sessions (id, user_id, expires_at)")).
		WithArgs(session.ID, session.UserID, session.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(q("SELECT id, user_id, expires_at FROM sessions WHERE id = $1")).
		WithArgs(session.ID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at"}).
			AddRow(session.ID, session.UserID, session.ExpiresAt))

	require.NoError(t, repo.SaveSession(ctx, session))

	got, err := repo.Session(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestSession_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(q("FROM sessions WHERE id = $1")).
		WithArgs("gone").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "expires_at"}))

	_, err := repo.Session(context.Background(), "gone")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestExtendSession(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	expiresAt := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(q("UPDATE sessions SET expires_at = $1 WHERE id = $2")).
		WithArgs(expiresAt, "abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(q("UPDATE sessions SET expires_at = $1 WHERE id = $2")).
		WithArgs(expiresAt, "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	require.NoError(t, repo.ExtendSession(ctx, "abc", expiresAt))
	assert.ErrorIs(t, repo.ExtendSession(ctx, "gone", expiresAt), storage.ErrSessionNotFound)
}

func TestDeleteSession_Idempotent(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ctx := context.Background()

	mock.ExpectExec(q("DELETE FROM sessions WHERE id = $1")).
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(q("DELETE FROM sessions WHERE id = $1")).
		WithArgs("abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.NoError(t, repo.DeleteSession(ctx, "abc"))
	assert.NoError(t, repo.DeleteSession(ctx, "abc"))
}

func TestDeleteUserSessions(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(q("DELETE FROM sessions WHERE user_id = $1")).
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	assert.NoError(t, repo.DeleteUserSessions(context.Background(), 7))
}

func TestPurgeExpiredSessions(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(q("DELETE FROM sessions WHERE expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	n, err := repo.PurgeExpiredSessions(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestNewWithDB_HasNoPool(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	assert.Nil(t, repo.DB())
	repo.Close()
}
