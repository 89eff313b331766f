package cli

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"BlogScraper/internal/app"
	"BlogScraper/internal/config"
	"BlogScraper/internal/domain"
	"BlogScraper/internal/logging"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	logLevel   string

	// httpClient is injected by tests.
	httpClient *http.Client
}

// NewRootCommand builds the blogscraper command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&rootOptions{})
}

func newRootCommand(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "blogscraper",
		Short:         "blogscraper fetches engineering blog posts, stores them in SQLite and exports them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default $BLOG_SCRAPER_CONFIG)")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to the SQLite database (overrides config)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newScrapeCommand(opts),
		newListCommand(opts),
		newExportCommand(opts),
		newSourcesCommand(opts),
	)
	return root
}

// Execute runs the CLI and returns the first error for main to report.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.dbPath != "" {
		cfg.Database.Path = o.dbPath
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	return cfg, nil
}

func (o *rootOptions) openApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)
	return app.New(cmd.Context(), cfg, logger, app.Options{HTTPClient: o.httpClient})
}

// filterFlags are the query flags shared by list and export.
type filterFlags struct {
	company  string
	author   string
	dateFrom string
	dateTo   string
	limit    int
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.company, "company", "c", "", "only posts from this company (source name)")
	cmd.Flags().StringVarP(&f.author, "author", "a", "", "only posts by this author")
	cmd.Flags().StringVar(&f.dateFrom, "date-from", "", "only posts published on or after YYYY-MM-DD")
	cmd.Flags().StringVar(&f.dateTo, "date-to", "", "only posts published on or before YYYY-MM-DD")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "maximum number of posts (0 = no limit)")
}

func (f *filterFlags) filter() (domain.PostFilter, error) {
	from, err := domain.ParseOptionalDay(f.dateFrom)
	if err != nil {
		return domain.PostFilter{}, fmt.Errorf("--date-from: %w", err)
	}
	to, err := domain.ParseOptionalDay(f.dateTo)
	if err != nil {
		return domain.PostFilter{}, fmt.Errorf("--date-to: %w", err)
	}
	filter := domain.PostFilter{
		Company:  f.company,
		Author:   f.author,
		DateFrom: from,
		DateTo:   to,
		Limit:    f.limit,
	}
	if err := filter.Validate(); err != nil {
		return domain.PostFilter{}, err
	}
	return filter, nil
}
