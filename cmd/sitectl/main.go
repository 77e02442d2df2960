package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/springlegal/website/backend/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:          "sitectl <command>",
	Short:        "Operator tasks for the Spring Legal site backend",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the process environment still applies.
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		cfg = loaded
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(captchaCmd)
	rootCmd.AddCommand(mailCheckCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
