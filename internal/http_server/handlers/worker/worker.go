package worker

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/catalog"
	"campus_delivery/internal/http_server/apierr"
	"campus_delivery/internal/http_server/handlers/actor"
	resp "campus_delivery/internal/lib/api/response"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type DeliveriesResponse struct {
	resp.Response
	Orders []models.Order `json:"orders"`
}

type AcceptResponse struct {
	resp.Response
	Order models.Order `json:"order"`
}

type EarningsResponse struct {
	resp.Response
	Earnings []models.Earning `json:"earnings"`
}

type Service interface {
	ActiveDeliveries(ctx context.Context, a catalog.Actor) ([]models.Order, error)
	AcceptDelivery(ctx context.Context, a catalog.Actor, id string) (models.Order, error)
	Earnings(ctx context.Context, a catalog.Actor) ([]models.Earning, error)
}

func Deliveries(log *slog.Logger, users actor.UserProvider, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.worker.Deliveries"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := actor.Resolve(ctx, users)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		orders, err := svc.ActiveDeliveries(ctx, a)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		if orders == nil {
			orders = []models.Order{}
		}

		render.JSON(w, r, DeliveriesResponse{
			Response: resp.OK(),
			Orders:   orders,
		})
	}
}

func Accept(log *slog.Logger, users actor.UserProvider, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.worker.Accept"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := actor.Resolve(ctx, users)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		order, err := svc.AcceptDelivery(ctx, a, chi.URLParam(r, "orderId"))
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		log.Info("Delivery accepted", slog.String("order_id", order.ID), slog.Int64("uid", a.UserID))

		render.JSON(w, r, AcceptResponse{
			Response: resp.OK(),
			Order:    order,
		})
	}
}

func Earnings(log *slog.Logger, users actor.UserProvider, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.worker.Earnings"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		a, err := actor.Resolve(ctx, users)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		earnings, err := svc.Earnings(ctx, a)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		if earnings == nil {
			earnings = []models.Earning{}
		}

		render.JSON(w, r, EarningsResponse{
			Response: resp.OK(),
			Earnings: earnings,
		})
	}
}
