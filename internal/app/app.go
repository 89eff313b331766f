package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"BlogScraper/internal/config"
	"BlogScraper/internal/infrastructure/fetcher"
	"BlogScraper/internal/infrastructure/parser"
	"BlogScraper/internal/infrastructure/storage"
	"BlogScraper/internal/logging"
	"BlogScraper/internal/scanner"
	"BlogScraper/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg        config.Config
	registry   *scanner.Registry
	repository *storage.SQLiteRepository
	pipeline   *usecase.Pipeline
	catalog    *usecase.Catalog
}

// Options replaces collaborators, mostly for tests.
type Options struct {
	HTTPClient *http.Client
}

// New opens the database and builds the scrape pipeline.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger, opts Options) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	registry, err := parser.NewRegistry(SourceOverrides(cfg.Sources))
	if err != nil {
		return nil, err
	}

	repo, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	pages := fetcher.New(cfg.HTTP, opts.HTTPClient, baseLogger.With("component", "fetcher"))
	source := parser.NewStrategySource(registry, pages, baseLogger.With("component", "source"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Repository: repo,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:        cfg,
		registry:   registry,
		repository: repo,
		pipeline:   pipeline,
		catalog:    usecase.NewCatalog(repo),
	}, nil
}

// Config returns the settings the application was built with.
func (a *Application) Config() config.Config { return a.cfg }

// Sources exposes the source registry.
func (a *Application) Sources() *scanner.Registry { return a.registry }

// Pipeline returns the scrape use case.
func (a *Application) Pipeline() *usecase.Pipeline { return a.pipeline }

// Catalog returns the read use case.
func (a *Application) Catalog() *usecase.Catalog { return a.catalog }

// Close releases the database.
func (a *Application) Close() error {
	if a.repository == nil {
		return nil
	}
	return a.repository.Close()
}

// SourceOverrides converts configured source settings into registry overrides.
func SourceOverrides(cfg []config.SourceConfig) []scanner.Override {
	overrides := make([]scanner.Override, 0, len(cfg))
	for _, src := range cfg {
		overrides = append(overrides, scanner.Override{
			Key:      src.Key,
			BaseURL:  src.BaseURL,
			FeedURL:  src.FeedURL,
			Disabled: src.Disabled,
		})
	}
	return overrides
}
