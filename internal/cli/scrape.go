package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"BlogScraper/internal/usecase"
)

func newScrapeCommand(root *rootOptions) *cobra.Command {
	var (
		sources []string
		limit   int
		output  string
		workers int
	)

	cmd := &cobra.Command{
		Use:   "scrape [urls...]",
		Short: "Scrape blog posts and store them.",
		Long: `Scrape blog posts and store them in the database.

A URL naming a source's index page scrapes that source's posts; any other URL
is scraped as a single post, using the source registered for its host or the
generic extractor. Without URLs or --source every enabled source is scraped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}

			application, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer application.Close()

			cfg := application.Config()
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Scrape.Workers
			}
			if workers < 1 {
				return fmt.Errorf("--workers must be at least 1")
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.Scrape.Limit
			}

			report, err := application.Pipeline().Scrape(cmd.Context(), usecase.ScrapeRequest{
				Targets:   args,
				Sources:   sources,
				Limit:     limit,
				Workers:   workers,
				OutputDir: output,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, post := range report.Posts {
				fmt.Fprintf(out, "Scraped (%d/%d): %s\n", i+1, report.Discovered, post.Title)
			}
			for _, failure := range report.Failures {
				fmt.Fprintf(out, "Failed: %s: %v\n", failure.URL, failure.Err)
			}
			if len(report.Files) > 0 {
				fmt.Fprintf(out, "Wrote %d JSON files to %s\n", len(report.Files), output)
			}
			fmt.Fprintf(out, "Stored %d posts (%d discovered, %d failed)\n",
				report.Stored, report.Discovered, len(report.Failures))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&sources, "source", "s", nil, "source name or key to scrape (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of posts per source (0 = no limit)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory to also write one JSON file per post")
	cmd.Flags().IntVarP(&workers, "workers", "w", usecase.DefaultWorkers, "number of parallel fetches")
	return cmd
}
