package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/springlegal/website/backend/internal/handler/pages"
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Check that every page in the route table exists under CONTENT_ROOT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := pages.DefaultTable()
		if err := table.Validate(os.DirFS(cfg.Server.ContentRoot)); err != nil {
			return fmt.Errorf("content root %s:\n%w", cfg.Server.ContentRoot, err)
		}

		out := cmd.OutOrStdout()
		for _, p := range table.Paths() {
			fmt.Fprintf(out, "%-34s %s\n", p, table[p])
		}
		fmt.Fprintf(out, "%d pages OK\n", len(table))
		return nil
	},
}
