package forgotPassword

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email string `json:"email" validate:"required"`
}

type Response struct {
	resp.Response
	Message string `json:"message"`
}

type ResetRequester interface {
	RequestPasswordReset(ctx context.Context, email string) (string, error)
}

// New starts a password reset. The answer does not reveal whether the
// address is registered.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	requester ResetRequester,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.forgotPassword.New"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		msg, err := requester.RequestPasswordReset(ctx, req.Email)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusBadRequest)

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			Message:  msg,
		})
	}
}
