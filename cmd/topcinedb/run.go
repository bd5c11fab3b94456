package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/topcine/topcinedb/internal/app"
	"github.com/topcine/topcinedb/internal/domain"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full scrape over the configured URL sources",
	Long: `Run resolves every URL in the configured source files:
1. Seeds the progress table with any URLs not seen before
2. Classifies each URL as a movie, series, or anime
3. Resolves seasons, episodes, and streaming servers
4. Persists the resulting tree to SQLite

URLs that were already completed in a previous run are skipped, so the
command can be interrupted and re-run to resume where it left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		run := domain.NewRunContext(ctx)
		if err := application.Run(run); err != nil {
			return fmt.Errorf("run failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
