// Package cli implements campusctl, the operator command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"campus_delivery/internal/config"
	"campus_delivery/internal/storage/postgres"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the campusctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "campusctl",
		Short:         "Operate the campus delivery backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file (default $CONFIG_PATH or ./config/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log service output")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSessionsCmd(opts),
		newUsersCmd(opts),
		newSeedCmd(opts),
	)

	return cmd
}

func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (o *rootOptions) load() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "./config/config.yaml"
	}

	return config.Load(path)
}

func (o *rootOptions) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// connect loads the config and opens the PostgreSQL pool.
func (o *rootOptions) connect(ctx context.Context) (*config.Config, *postgres.PostgresRepo, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}

	repo, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	return cfg, repo, nil
}
