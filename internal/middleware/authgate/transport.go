package authgate

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	TransportBearer = "bearer"
	TransportCookie = "cookie"

	DefaultCookieName = "token"
)

var ErrNoCredential = errors.New("no session token found")

// Transport moves the session token between client and server.
type Transport interface {
	// Extract returns the presented token or ErrNoCredential.
	Extract(r *http.Request) (string, error)
	// Attach hands the token to the client and returns what, if anything,
	// belongs in the JSON body.
	Attach(w http.ResponseWriter, token string, expiresAt time.Time) string
	Clear(w http.ResponseWriter)
}

func NewTransport(kind, cookieName string) (Transport, error) {
	switch kind {
	case TransportBearer, "":
		return Bearer{}, nil
	case TransportCookie:
		if cookieName == "" {
			cookieName = DefaultCookieName
		}
		return Cookie{Name: cookieName}, nil
	default:
		return nil, fmt.Errorf("authgate.NewTransport: unknown transport %q", kind)
	}
}

// Bearer reads `Authorization: Bearer <token>` and returns the token in the body.
type Bearer struct{}

func (Bearer) Extract(r *http.Request) (string, error) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoCredential
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoCredential
	}

	return token, nil
}

func (Bearer) Attach(_ http.ResponseWriter, token string, _ time.Time) string {
	return token
}

func (Bearer) Clear(http.ResponseWriter) {}

// Cookie keeps the token in an httpOnly, Secure, SameSite=Strict cookie.
type Cookie struct {
	Name string
	// Now defaults to time.Now.
	Now func() time.Time
}

func (c Cookie) Extract(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.Name)
	if err != nil || cookie.Value == "" {
		return "", ErrNoCredential
	}

	return cookie.Value, nil
}

func (c Cookie) Attach(w http.ResponseWriter, token string, expiresAt time.Time) string {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	maxAge := int(expiresAt.Sub(now()).Seconds())
	if maxAge <= 0 {
		c.Clear(w)
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})

	return ""
}

func (c Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
