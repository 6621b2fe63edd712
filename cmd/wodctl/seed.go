package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/2beens/wodhub/internal/catalog"
)

var seedCatalogCmd = &cobra.Command{
	Use:   "seed-catalog",
	Short: "Insert the default exercise catalog if the catalog is empty",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		seeded, err := catalog.NewService(catalog.NewRepo(pool), 1, 0).Seed(cmd.Context())
		if err != nil {
			return err
		}

		if seeded {
			fmt.Fprintf(cmd.OutOrStdout(), "catalog seeded with %d categories\n", len(catalog.DefaultCatalog))
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "catalog already has data, nothing to do")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCatalogCmd)
}
