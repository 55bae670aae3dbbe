package me

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	"campus_delivery/internal/middleware/authgate"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Response struct {
	resp.Response
	User models.UserView `json:"user"`
}

type UserProvider interface {
	Me(ctx context.Context, uid int64) (models.User, error)
}

func New(log *slog.Logger, users UserProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		uid, _ := authgate.UserID(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := users.Me(ctx, uid)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		render.JSON(w, r, Response{
			Response: resp.OK(),
			User:     user.View(),
		})
	}
}
