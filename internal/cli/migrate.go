package cli

import (
	"context"
	"database/sql"
	"fmt"

	"campus_delivery/internal/storage/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	run := func(name string, fn func(context.Context, *sql.DB) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Run goose %s", name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := cmd.Context()

				_, repo, err := opts.connect(ctx)
				if err != nil {
					return err
				}
				defer repo.Close()

				if err := fn(ctx, repo.DB()); err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", name)
				return nil
			},
		}
	}

	cmd.AddCommand(
		run("up", postgres.Migrate),
		run("down", postgres.Rollback),
		run("status", postgres.MigrationStatus),
	)

	return cmd
}
