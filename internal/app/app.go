// Package app builds the services shared by the API server and campusctl
// from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"campus_delivery/internal/auth"
	"campus_delivery/internal/catalog"
	"campus_delivery/internal/config"
	"campus_delivery/internal/storage/memory"
	"campus_delivery/internal/storage/postgres"
	"campus_delivery/internal/storage/redis"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

func Policy(cfg *config.Config) auth.Policy {
	return auth.Policy{
		SessionTTL:     cfg.Sessions.TTL,
		RenewBefore:    cfg.Sessions.RenewBefore,
		ResetTTL:       cfg.Reset.TokenTTL,
		PasswordMinLen: cfg.Passwords.MinLength,
		PasswordMaxLen: cfg.Passwords.MaxLength,
		EmailMaxLen:    cfg.Passwords.EmailMaxLen,
		NameMaxLen:     cfg.Passwords.NameMaxLen,
		FrontendURL:    cfg.Reset.FrontendURL,
	}
}

// SessionStore returns the configured session backend and a func releasing it.
func SessionStore(
	ctx context.Context,
	cfg *config.Config,
	repo *postgres.PostgresRepo,
) (auth.SessionStore, func(), error) {
	const op = "app.SessionStore"

	switch cfg.Sessions.Store {
	case StorePostgres, "":
		return repo, func() {}, nil
	case StoreRedis:
		rdb, err := redis.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", op, err)
		}

		return rdb, func() { _ = rdb.Close() }, nil
	case StoreMemory:
		return memory.New(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%s: unknown session store %q", op, cfg.Sessions.Store)
	}
}

// Catalog opens the catalog on the shared PostgreSQL pool, or on SQLite when
// configured, creating the SQLite tables on the way.
func Catalog(log *slog.Logger, cfg *config.Config, repo *postgres.PostgresRepo) (*catalog.Catalog, error) {
	const op = "app.Catalog"

	switch cfg.Catalog.Driver {
	case catalog.DriverPostgres, "":
		db, err := catalog.Open(catalog.DriverPostgres, repo.DB(), "")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return catalog.New(log, db, cfg.Catalog.DeliveryFee), nil
	case catalog.DriverSQLite:
		db, err := catalog.Open(catalog.DriverSQLite, nil, cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := catalog.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		return catalog.New(log, db, cfg.Catalog.DeliveryFee), nil
	default:
		return nil, fmt.Errorf("%s: unknown catalog driver %q", op, cfg.Catalog.Driver)
	}
}
