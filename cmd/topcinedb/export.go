package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/topcine/topcinedb/internal/app"
	"github.com/topcine/topcinedb/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored catalog to YAML",
	Long: `Export dumps every stored show with its seasons, episodes, and
streaming servers to a YAML file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outFile, _ := cmd.Flags().GetString("out")

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		path := outFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(application.Config.DataDir, path)
		}

		exporter := export.NewService(application.Log, application.ShowRepo)
		if err := exporter.Catalog(cmd.Context(), path); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Println("Catalog written to", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("out", "catalog.yaml", "output file (relative paths are resolved inside the data directory)")
	rootCmd.AddCommand(exportCmd)
}
