package login

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/middleware/authgate"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Response struct {
	resp.Response
	Token string          `json:"token,omitempty"`
	User  models.UserView `json:"user"`
}

type SessionIssuer interface {
	Login(ctx context.Context, email, password string) (auth.Issued, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	issuer SessionIssuer,
	transport authgate.Transport,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		if err := validate.Struct(req); err != nil {
			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(auth.MsgCredentialsRequired))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		issued, err := issuer.Login(ctx, req.Email, req.Password)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusBadRequest)

			return
		}

		log.Info("User logged in", slog.Int64("uid", issued.User.ID))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Token:    transport.Attach(w, issued.Token, issued.ExpiresAt),
			User:     issued.User.View(),
		})
	}
}
