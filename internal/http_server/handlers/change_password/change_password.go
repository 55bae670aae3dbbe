package changePassword

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/middleware/authgate"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const MsgPasswordUpdated = "Password updated successfully"

type Request struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type PasswordChanger interface {
	ChangePassword(ctx context.Context, uid int64, currentPassword, newPassword string) error
}

// New changes the caller's password. Every session of the user, the current
// one included, is revoked, so the credential is cleared as well.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	changer PasswordChanger,
	transport authgate.Transport,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.changePassword.New"

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
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		uid, _ := authgate.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := changer.ChangePassword(ctx, uid, req.CurrentPassword, req.NewPassword); err != nil {
			apierr.Write(w, r, log, err, http.StatusBadRequest)

			return
		}

		transport.Clear(w)

		log.Info("Password changed", slog.Int64("uid", uid))

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  MsgPasswordUpdated,
		})
	}
}
