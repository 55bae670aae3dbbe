package authgate

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport("", "")
	require.NoError(t, err)
	assert.IsType(t, Bearer{}, tr)

	tr, err = NewTransport(TransportCookie, "")
	require.NoError(t, err)
	require.IsType(t, Cookie{}, tr)
	assert.Equal(t, DefaultCookieName, tr.(Cookie).Name)

	_, err = NewTransport("header", "")
	assert.Error(t, err)
}

func TestBearer_Extract(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"missing":      {"", "", false},
		"wrong scheme": {"Basic abc", "", false},
		"empty token":  {"Bearer ", "", false},
		"ok":           {"Bearer abc", "abc", true},
		"lowercase":    {"bearer abc", "abc", true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			got, err := Bearer{}.Extract(r)
			if !tc.ok {
				assert.ErrorIs(t, err, ErrNoCredential)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBearer_AttachReturnsToken(t *testing.T) {
	w := httptest.NewRecorder()

	assert.Equal(t, "abc", Bearer{}.Attach(w, "abc", time.Now().Add(time.Hour)))
	assert.Empty(t, w.Result().Cookies())
}

func TestCookie_Attributes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Cookie{Name: "token", Now: func() time.Time { return now }}

	w := httptest.NewRecorder()
	body := c.Attach(w, "abc", now.Add(30*24*time.Hour))
	assert.Empty(t, body)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	ck := cookies[0]
	assert.Equal(t, "token", ck.Name)
	assert.Equal(t, "abc", ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	assert.Equal(t, 30*24*60*60, ck.MaxAge)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "abc"})
	got, err := c.Extract(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	_, err = c.Extract(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrNoCredential)
}
