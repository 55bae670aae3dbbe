package cli

import (
	"fmt"

	"campus_delivery/internal/app"
	"campus_delivery/internal/catalog"

	"github.com/spf13/cobra"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the demo restaurants and menus that are not there yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, repo, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			c, err := app.Catalog(opts.logger(), cfg, repo)
			if err != nil {
				return err
			}

			n, err := c.Seed(ctx, catalog.DemoRestaurants())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d restaurants\n", n)
			return nil
		},
	}
}
