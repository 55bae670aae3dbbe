package authgate

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"campus_delivery/internal/auth"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const (
	MsgNoToken      = "No session token found"
	MsgInvalidToken = "Invalid session token"
	MsgAuthFailed   = "Authentication failed"
)

type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (models.Session, error)
}

type ctxKey struct{}

// New returns middleware that lets a request through only with a valid
// session. Every failure is answered with 401.
func New(log *slog.Logger, validator SessionValidator, transport Transport) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authgate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, err := transport.Extract(r)
			if err != nil {
				reject(w, r, MsgNoToken)
				return
			}

			session, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				transport.Clear(w)

				if errors.Is(err, auth.ErrAuthentication) {
					log.Debug("invalid session token")
					reject(w, r, MsgInvalidToken)
					return
				}

				log.Error("session validation failed", sl.Err(err))
				reject(w, r, MsgAuthFailed)
				return
			}

			transport.Attach(w, token, session.ExpiresAt)

			ctx := context.WithValue(r.Context(), ctxKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func reject(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, resp.Error(msg))
}

// UserID returns the authenticated user, if the gate ran.
func UserID(ctx context.Context) (int64, bool) {
	session, ok := ctx.Value(ctxKey{}).(models.Session)
	if !ok {
		return 0, false
	}

	return session.UserID, true
}

func SessionFrom(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(ctxKey{}).(models.Session)
	return session, ok
}
