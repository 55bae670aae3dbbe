package register

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
	Role     string `json:"role" validate:"omitempty,oneof=customer worker"`
}

type Response struct {
	resp.Response
	User models.UserView `json:"user"`
}

type UserRegisterer interface {
	Register(ctx context.Context, email, password, name, role string) (models.User, error)
}

func New(
	log *slog.Logger,
	validate *validator.Validate,
	registerer UserRegisterer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		log.Info("Request body decoded")

		if err := validate.Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("Invalid request", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			if resp.HasTag(validateErr, "required") {
				render.JSON(w, r, resp.Error(auth.MsgCredentialsRequired))
			} else {
				render.JSON(w, r, resp.ValidationError(validateErr))
			}

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := registerer.Register(ctx, req.Email, req.Password, req.Name, req.Role)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusBadRequest)

			return
		}

		log.Info("User registered", slog.Int64("id", user.ID))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response: resp.OK(),
			User:     user.View(),
		})
	}
}
