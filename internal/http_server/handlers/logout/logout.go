package logout

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	"campus_delivery/internal/middleware/authgate"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const MsgLoggedOut = "Logged out successfully"

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type SessionCloser interface {
	Logout(ctx context.Context, token string) error
}

// New ends the presented session. A request without a credential still
// succeeds.
func New(
	log *slog.Logger,
	closer SessionCloser,
	transport authgate.Transport,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		token, _ := transport.Extract(r)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := closer.Logout(ctx, token); err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		transport.Clear(w)

		log.Info("user logged out")

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  MsgLoggedOut,
		})
	}
}
