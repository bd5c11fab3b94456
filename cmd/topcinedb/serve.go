package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/topcine/topcinedb/internal/app"
	"github.com/topcine/topcinedb/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scrape dashboard",
	Long: `Serve starts an HTTP server with a dashboard for monitoring and
controlling scrape runs. The dashboard shows live progress, the rolling
log, and any failed URLs, and exposes start and stop controls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		server := web.NewServer(application.Log, application)
		if err := server.ListenAndServe(ctx, application.Config.ListenAddr); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
