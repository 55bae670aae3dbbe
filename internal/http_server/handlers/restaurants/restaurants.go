package restaurants

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/http_server/apierr"
	resp "campus_delivery/internal/lib/api/response"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type ListResponse struct {
	resp.Response
	Restaurants []models.Restaurant `json:"restaurants"`
}

type GetResponse struct {
	resp.Response
	Restaurant models.Restaurant `json:"restaurant"`
}

type Provider interface {
	Restaurants(ctx context.Context) ([]models.Restaurant, error)
	Restaurant(ctx context.Context, id string) (models.Restaurant, error)
}

func List(log *slog.Logger, provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.restaurants.List"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := provider.Restaurants(ctx)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		if list == nil {
			list = []models.Restaurant{}
		}

		render.JSON(w, r, ListResponse{
			Response:    resp.OK(),
			Restaurants: list,
		})
	}
}

func Get(log *slog.Logger, provider Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.restaurants.Get"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		restaurant, err := provider.Restaurant(ctx, chi.URLParam(r, "id"))
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		render.JSON(w, r, GetResponse{
			Response:   resp.OK(),
			Restaurant: restaurant,
		})
	}
}
