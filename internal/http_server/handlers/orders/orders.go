package orders

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"campus_delivery/internal/catalog"
	"campus_delivery/internal/http_server/apierr"
	"campus_delivery/internal/http_server/handlers/actor"
	resp "campus_delivery/internal/lib/api/response"
	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/models"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type CreateRequest struct {
	RestaurantID     string        `json:"restaurantId" validate:"required"`
	DeliveryLocation string        `json:"deliveryLocation"`
	Items            []RequestItem `json:"items" validate:"required,min=1,dive"`
}

type RequestItem struct {
	MenuItemID string `json:"menuItemId" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=1"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type OrderResponse struct {
	resp.Response
	Order models.Order `json:"order"`
}

type ListResponse struct {
	resp.Response
	Orders []models.Order `json:"orders"`
}

type Service interface {
	CreateOrder(ctx context.Context, a catalog.Actor, in catalog.NewOrder) (models.Order, error)
	Orders(ctx context.Context, a catalog.Actor, kind string) ([]models.Order, error)
	Order(ctx context.Context, a catalog.Actor, id string) (models.Order, error)
	UpdateStatus(ctx context.Context, a catalog.Actor, id string, status models.OrderStatus) (models.Order, error)
}

func Create(
	log *slog.Logger,
	validate *validator.Validate,
	users actor.UserProvider,
	svc Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.Create"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req CreateRequest

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

		a, err := actor.Resolve(ctx, users)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		in := catalog.NewOrder{
			RestaurantID:     req.RestaurantID,
			DeliveryLocation: req.DeliveryLocation,
		}
		for _, item := range req.Items {
			in.Items = append(in.Items, catalog.NewOrderItem{
				MenuItemID: item.MenuItemID,
				Quantity:   item.Quantity,
			})
		}

		order, err := svc.CreateOrder(ctx, a, in)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, OrderResponse{
			Response: resp.OK(),
			Order:    order,
		})
	}
}

// List answers ?type=available with the open orders a worker may accept.
func List(log *slog.Logger, users actor.UserProvider, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.List"

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

		list, err := svc.Orders(ctx, a, r.URL.Query().Get("type"))
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		writeList(w, r, list)
	}
}

func Get(log *slog.Logger, users actor.UserProvider, svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.Get"

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

		order, err := svc.Order(ctx, a, chi.URLParam(r, "id"))
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		render.JSON(w, r, OrderResponse{
			Response: resp.OK(),
			Order:    order,
		})
	}
}

func UpdateStatus(
	log *slog.Logger,
	validate *validator.Validate,
	users actor.UserProvider,
	svc Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.orders.UpdateStatus"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req StatusRequest

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

		a, err := actor.Resolve(ctx, users)
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		order, err := svc.UpdateStatus(ctx, a, chi.URLParam(r, "orderId"), models.OrderStatus(req.Status))
		if err != nil {
			apierr.Write(w, r, log, err, http.StatusUnauthorized)

			return
		}

		render.JSON(w, r, OrderResponse{
			Response: resp.OK(),
			Order:    order,
		})
	}
}

func writeList(w http.ResponseWriter, r *http.Request, list []models.Order) {
	if list == nil {
		list = []models.Order{}
	}

	render.JSON(w, r, ListResponse{
		Response: resp.OK(),
		Orders:   list,
	})
}
