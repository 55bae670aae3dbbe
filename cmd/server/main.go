package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus_delivery/internal/app"
	"campus_delivery/internal/auth"
	"campus_delivery/internal/config"
	"campus_delivery/internal/http_server/router"
	sl "campus_delivery/internal/lib/logger/sl"
	"campus_delivery/internal/middleware/authgate"
	"campus_delivery/internal/rabbitmq"
	"campus_delivery/internal/storage/postgres"

	"github.com/go-playground/validator/v10"
)

const (
	envLocal = "local"
	envDev   = "dev"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("starting campus delivery api", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		log.Error("failed to connect postgres", sl.Err(err))
		os.Exit(1)
	}
	defer repo.Close()

	if err := postgres.Migrate(ctx, repo.DB()); err != nil {
		log.Error("failed to apply migrations", sl.Err(err))
		os.Exit(1)
	}

	sessions, closeSessions, err := app.SessionStore(ctx, cfg, repo)
	if err != nil {
		log.Error("failed to set up session store", sl.Err(err))
		os.Exit(1)
	}
	defer closeSessions()

	msgBroker, err := rabbitmq.New(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName)
	if err != nil {
		log.Error("failed to connect rabbitmq", sl.Err(err))
		os.Exit(1)
	}
	defer msgBroker.Close()

	authService := auth.New(log, repo, repo, sessions, msgBroker, app.Policy(cfg))

	catalogService, err := app.Catalog(log, cfg, repo)
	if err != nil {
		log.Error("failed to set up catalog", sl.Err(err))
		os.Exit(1)
	}

	transport, err := authgate.NewTransport(cfg.Sessions.Transport, cfg.Sessions.CookieName)
	if err != nil {
		log.Error("invalid session transport", sl.Err(err))
		os.Exit(1)
	}

	r := router.New(router.Deps{
		Log:       log,
		Validate:  validator.New(),
		Auth:      authService,
		Catalog:   catalogService,
		Transport: transport,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      r,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server is running",
			slog.String("address", cfg.HTTPServer.Address),
			slog.String("session_store", cfg.Sessions.Store),
			slog.String("transport", cfg.Sessions.Transport),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", sl.Err(err))
			stop()
		}
	}()

	<-ctx.Done()

	log.Info("Shutting down HTTP server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", sl.Err(err))
	} else {
		log.Info("Server stopped gracefully")
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}
