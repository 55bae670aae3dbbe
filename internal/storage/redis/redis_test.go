package redis

import (
	"context"
	"testing"
	"time"

	"campus_delivery/internal/models"
	"campus_delivery/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	repo := NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = repo.Close() })

	return repo, mr
}

func expiresIn(d time.Duration) time.Time {
	return time.UnixMilli(time.Now().Add(d).UnixMilli()).UTC()
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
	assert.Equal(t, "user_sessions:42", userSessionsKey(42))
}

func TestSaveAndLoadSession(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	session := models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}
	require.NoError(t, repo.SaveSession(ctx, session))

	got, err := repo.Session(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestSession_ExpiredIsGone(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))

	mr.FastForward(2 * time.Hour)

	_, err := repo.Session(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
}

func TestUserIndex_ExpiresWithSessions(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, repo.SaveSession(ctx, models.Session{ID: id, UserID: 7, ExpiresAt: expiresIn(time.Hour)}))
	}

	assert.Greater(t, mr.TTL("user_sessions:7"), time.Duration(0))

	mr.FastForward(2 * time.Hour)

	assert.False(t, mr.Exists("session:a"))
	assert.False(t, mr.Exists("user_sessions:7"))
}

func TestUserIndex_FollowsLatestSession(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "long", UserID: 7, ExpiresAt: expiresIn(3 * time.Hour)}))
	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "short", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))

	assert.Greater(t, mr.TTL("user_sessions:7"), 2*time.Hour)

	mr.FastForward(2 * time.Hour)

	assert.False(t, mr.Exists("session:short"))
	assert.True(t, mr.Exists("session:long"))
	assert.True(t, mr.Exists("user_sessions:7"))
}

func TestSaveSession_PrunesExpiredIDs(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))
	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "b", UserID: 7, ExpiresAt: expiresIn(3 * time.Hour)}))

	mr.FastForward(2 * time.Hour)

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "c", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))

	members, err := mr.Members("user_sessions:7")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, members)
}

func TestExtendSession_KeepsID(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))

	extended := expiresIn(3 * time.Hour)
	require.NoError(t, repo.ExtendSession(ctx, "a", extended))

	got, err := repo.Session(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, models.Session{ID: "a", UserID: 7, ExpiresAt: extended}, got)
	assert.Greater(t, mr.TTL("user_sessions:7"), 2*time.Hour)

	mr.FastForward(2 * time.Hour)

	_, err = repo.Session(ctx, "a")
	assert.NoError(t, err)
}

func TestExtendSession_AfterLogout(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))
	require.NoError(t, repo.DeleteSession(ctx, "a"))

	err := repo.ExtendSession(ctx, "a", expiresIn(3*time.Hour))
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	assert.False(t, mr.Exists("session:a"))
}

func TestDeleteSession_Idempotent(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))
	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "b", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))

	require.NoError(t, repo.DeleteSession(ctx, "a"))
	require.NoError(t, repo.DeleteSession(ctx, "a"))
	require.NoError(t, repo.DeleteSession(ctx, "never-existed"))

	_, err := repo.Session(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrSessionNotFound)

	members, err := mr.Members("user_sessions:7")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, members)
}

func TestDeleteUserSessions(t *testing.T) {
	repo, mr := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "a", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))
	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "b", UserID: 7, ExpiresAt: expiresIn(time.Hour)}))
	require.NoError(t, repo.SaveSession(ctx, models.Session{ID: "other", UserID: 8, ExpiresAt: expiresIn(time.Hour)}))

	require.NoError(t, repo.DeleteUserSessions(ctx, 7))

	for _, id := range []string{"a", "b"} {
		_, err := repo.Session(ctx, id)
		assert.ErrorIs(t, err, storage.ErrSessionNotFound)
	}
	assert.False(t, mr.Exists("user_sessions:7"))

	_, err := repo.Session(ctx, "other")
	assert.NoError(t, err)

	require.NoError(t, repo.DeleteUserSessions(ctx, 99))
}
