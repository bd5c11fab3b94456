package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/topcine/topcinedb/internal/app"
	"github.com/topcine/topcinedb/internal/crawl"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Harvest show URLs from the site listing pages",
	Long: `Crawl walks the paginated listing pages of a site section and collects
show page URLs into a JSON file under the data directory. The file can
then be used as a URL source for the run command.

Sections map to site paths, e.g. "series", "anime", or "movies".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		section, _ := cmd.Flags().GetString("section")
		startPage, _ := cmd.Flags().GetInt("start-page")
		endPage, _ := cmd.Flags().GetInt("end-page")
		outFile, _ := cmd.Flags().GetString("out")

		application, err := app.NewApp()
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()

		crawler := crawl.NewService(application.Log, application.Config)
		urls, err := crawler.Harvest(section, startPage, endPage)
		if err != nil {
			return fmt.Errorf("crawl failed: %w", err)
		}

		if outFile == "" {
			outFile = fmt.Sprintf("%s.json", section)
		}
		path := filepath.Join(application.Config.DataDir, outFile)
		if err := application.FileRepo.StoreURLs(path, urls); err != nil {
			return fmt.Errorf("failed to store urls: %w", err)
		}

		fmt.Printf("Harvested %d urls into %s\n", len(urls), path)
		return nil
	},
}

func init() {
	crawlCmd.Flags().String("section", "series", "site section to crawl: 'series', 'anime', or 'movies'")
	crawlCmd.Flags().Int("start-page", 1, "first listing page to visit")
	crawlCmd.Flags().Int("end-page", 5, "last listing page to visit")
	crawlCmd.Flags().String("out", "", "output file name inside the data directory (default '<section>.json')")
	rootCmd.AddCommand(crawlCmd)
}
