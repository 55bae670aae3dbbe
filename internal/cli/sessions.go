package cli

import (
	"fmt"
	"time"

	"campus_delivery/internal/app"

	"github.com/spf13/cobra"
)

func newSessionsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired sessions from PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, repo, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			if cfg.Sessions.Store == app.StoreRedis {
				fmt.Fprintln(cmd.OutOrStdout(), "sessions are stored in redis and expire on their own")
				return nil
			}

			n, err := repo.PurgeExpiredSessions(ctx, time.Now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", n)
			return nil
		},
	})

	return cmd
}
