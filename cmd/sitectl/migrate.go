package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/springlegal/website/backend/internal/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != "postgres" {
			return fmt.Errorf("STORE_DRIVER=%s has no schema to migrate", cfg.Database.Driver)
		}

		store, err := postgres.New(cfg.Database.URL)
		if err != nil {
			return err
		}
		defer store.Close()

		fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
		return nil
	},
}
