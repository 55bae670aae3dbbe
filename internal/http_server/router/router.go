// Package router wires handlers, rate limits and the auth gate into a chi mux.
package router

import (
	"log/slog"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/catalog"
	changePassword "campus_delivery/internal/http_server/handlers/change_password"
	forgotPassword "campus_delivery/internal/http_server/handlers/forgot_password"
	"campus_delivery/internal/http_server/handlers/login"
	"campus_delivery/internal/http_server/handlers/logout"
	"campus_delivery/internal/http_server/handlers/me"
	"campus_delivery/internal/http_server/handlers/orders"
	"campus_delivery/internal/http_server/handlers/register"
	resetPassword "campus_delivery/internal/http_server/handlers/reset_password"
	"campus_delivery/internal/http_server/handlers/restaurants"
	"campus_delivery/internal/http_server/handlers/worker"
	"campus_delivery/internal/middleware/authgate"
	rateLimit "campus_delivery/internal/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator/v10"
)

type Deps struct {
	Log       *slog.Logger
	Validate  *validator.Validate
	Auth      *auth.Auth
	Catalog   *catalog.Catalog
	Transport authgate.Transport
}

func New(d Deps) *chi.Mux {
	log := d.Log

	validate := d.Validate
	if validate == nil {
		validate = validator.New()
	}

	gate := authgate.New(log, d.Auth, d.Transport)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/auth", func(r chi.Router) {
		r.With(rateLimit.Register()).Post("/register",
			register.New(log, validate, d.Auth),
		)
		r.With(rateLimit.Login()).Post("/login",
			login.New(log, validate, d.Auth, d.Transport),
		)
		r.With(rateLimit.Logout()).Post("/logout",
			logout.New(log, d.Auth, d.Transport),
		)
		r.With(rateLimit.ForgotPassword()).Post("/forgot-password",
			forgotPassword.New(log, validate, d.Auth),
		)
		r.With(rateLimit.ResetPassword()).Post("/reset-password",
			resetPassword.New(log, validate, d.Auth),
		)

		r.Group(func(r chi.Router) {
			r.Use(gate)

			r.Get("/me", me.New(log, d.Auth))
			r.With(rateLimit.ChangePassword()).Put("/change-password",
				changePassword.New(log, validate, d.Auth, d.Transport),
			)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/restaurants", restaurants.List(log, d.Catalog))
		r.Get("/restaurants/{id}", restaurants.Get(log, d.Catalog))

		r.Group(func(r chi.Router) {
			r.Use(gate)

			r.Post("/orders", orders.Create(log, validate, d.Auth, d.Catalog))
			r.Get("/orders", orders.List(log, d.Auth, d.Catalog))
			r.Get("/orders/{id}", orders.Get(log, d.Auth, d.Catalog))
			r.Put("/orders/{orderId}/status", orders.UpdateStatus(log, validate, d.Auth, d.Catalog))

			r.Get("/worker/deliveries", worker.Deliveries(log, d.Auth, d.Catalog))
			r.Post("/worker/deliveries/{orderId}/accept", worker.Accept(log, d.Auth, d.Catalog))
			r.Get("/worker/earnings", worker.Earnings(log, d.Auth, d.Catalog))
		})
	})

	return r
}
