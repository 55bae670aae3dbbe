package authgate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validatorFunc func(ctx context.Context, token string) (models.Session, error)

func (f validatorFunc) ValidateSession(ctx context.Context, token string) (models.Session, error) {
	return f(ctx, token)
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func goodValidator(ctx context.Context, token string) (models.Session, error) {
	if token != "good" {
		return models.Session{}, &auth.Error{Kind: auth.ErrAuthentication, Message: auth.MsgInvalidSession}
	}

	return models.Session{ID: "h", UserID: 42, ExpiresAt: now.Add(24 * time.Hour)}, nil
}

func serve(t *testing.T, v SessionValidator, tr Transport, r *http.Request) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reached := false

	h := New(log, v, tr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true

		uid, ok := UserID(r.Context())
		assert.True(t, ok)
		assert.Equal(t, int64(42), uid)

		s, ok := SessionFrom(r.Context())
		assert.True(t, ok)
		assert.Equal(t, now.Add(24*time.Hour), s.ExpiresAt)

		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w, reached
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Error", body["status"])

	return body["error"]
}

func TestGate_Bearer(t *testing.T) {
	v := validatorFunc(goodValidator)

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w, reached := serve(t, v, Bearer{}, r)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgNoToken, errorMessage(t, w))

	r = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer nope")
	w, reached = serve(t, v, Bearer{}, r)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgInvalidToken, errorMessage(t, w))

	r = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.Header.Set("Authorization", "Bearer good")
	w, reached = serve(t, v, Bearer{}, r)
	assert.True(t, reached)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestGate_StoreFailure(t *testing.T) {
	v := validatorFunc(func(context.Context, string) (models.Session, error) {
		return models.Session{}, errors.New("connection reset")
	})

	tr := Cookie{Name: "token", Now: func() time.Time { return now }}

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "good"})

	w, reached := serve(t, v, tr, r)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, MsgAuthFailed, errorMessage(t, w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestGate_CookieRefreshedOnSuccess(t *testing.T) {
	tr := Cookie{Name: "token", Now: func() time.Time { return now }}

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "good"})

	w, reached := serve(t, validatorFunc(goodValidator), tr, r)
	require.True(t, reached)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "good", cookies[0].Value)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookies[0].MaxAge)
}

func TestGate_InvalidCookieCleared(t *testing.T) {
	tr := Cookie{Name: "token", Now: func() time.Time { return now }}

	r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "stale"})

	w, reached := serve(t, validatorFunc(goodValidator), tr, r)
	assert.False(t, reached)
	assert.Equal(t, MsgInvalidToken, errorMessage(t, w))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestUserID_WithoutGate(t *testing.T) {
	_, ok := UserID(context.Background())
	assert.False(t, ok)
}
