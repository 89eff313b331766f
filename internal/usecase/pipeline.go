package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/logging"
	"BlogScraper/internal/ports"
)

// DefaultWorkers bounds the fetch pool when a request does not.
const DefaultWorkers = 4

var slugExpr = regexp.MustCompile(`[^a-z0-9]+`)

// PipelineDeps wires all driven adapters into the scrape pipeline.
type PipelineDeps struct {
	Source     ports.PostSource
	Repository ports.PostRepository
	Logger     *slog.Logger
	Now        func() time.Time
}

// Pipeline fetches blog posts, normalizes them and stores them in one batch.
type Pipeline struct {
	source     ports.PostSource
	repository ports.PostRepository
	logger     *slog.Logger
	now        func() time.Time
}

// ScrapeRequest selects what one scrape run covers. Targets are URLs:
// a source's index page expands into its posts, anything else is scraped
// as a single post. With no targets and no sources every enabled source runs.
type ScrapeRequest struct {
	Targets   []string
	Sources   []string
	Limit     int
	Workers   int
	OutputDir string
}

// Failure records a URL that could not be discovered or scraped.
type Failure struct {
	URL string
	Err error
}

// ScrapeReport summarizes one run.
type ScrapeReport struct {
	Discovered int
	Stored     int
	Posts      []domain.BlogPost
	Failures   []Failure
	Files      []string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		source:     deps.Source,
		repository: deps.Repository,
		logger:     logger,
		now:        now,
	}
}

// Scrape runs one batch. Per-URL failures are logged and reported but never
// stop the batch; only invalid input, storage errors and cancellation do.
func (p *Pipeline) Scrape(ctx context.Context, req ScrapeRequest) (ScrapeReport, error) {
	var report ScrapeReport
	if p.source == nil {
		return report, fmt.Errorf("post source is not configured")
	}
	if req.Limit < 0 {
		return report, fmt.Errorf("limit must not be negative, got %d", req.Limit)
	}

	workers := req.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}

	targets, failures, err := p.collectTargets(ctx, req)
	if err != nil {
		return report, err
	}
	report.Discovered = len(targets)
	report.Failures = failures

	posts, failures := p.scrapeAll(ctx, targets, workers)
	report.Failures = append(report.Failures, failures...)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	scrapedAt := p.now().UTC().Truncate(time.Second)
	posts = dedupe(posts)
	for i := range posts {
		posts[i].ScrapedAt = scrapedAt
		posts[i] = posts[i].Normalize()
	}
	report.Posts = posts

	if p.repository != nil && len(posts) > 0 {
		stored, err := p.repository.Upsert(ctx, posts)
		if err != nil {
			return report, fmt.Errorf("persist posts: %w", err)
		}
		report.Stored = stored
	}

	if req.OutputDir != "" && len(posts) > 0 {
		files, err := writeJSONFiles(req.OutputDir, posts, scrapedAt)
		report.Files = files
		if err != nil {
			return report, err
		}
	}

	p.logger.Info("scrape finished",
		"discovered", report.Discovered,
		"stored", report.Stored,
		"failed", len(report.Failures))
	return report, nil
}

// collectTargets validates the request and expands index targets into post
// URLs. Discovery failures of one source do not affect the others.
func (p *Pipeline) collectTargets(ctx context.Context, req ScrapeRequest) ([]ports.Target, []Failure, error) {
	type indexJob struct {
		url    string
		source string
	}

	var (
		indexes  []indexJob
		singles  []ports.Target
		failures []Failure
	)

	for _, name := range req.Sources {
		src, err := p.source.Resolve(name)
		if err != nil {
			return nil, nil, err
		}
		indexes = append(indexes, indexJob{url: src.BaseURL, source: src.Key})
	}

	for _, raw := range req.Targets {
		raw = strings.TrimSpace(raw)
		src, isIndex, err := p.source.Classify(raw)
		if err != nil {
			return nil, nil, err
		}
		if isIndex {
			indexes = append(indexes, indexJob{url: raw, source: src.Key})
			continue
		}
		singles = append(singles, ports.Target{URL: raw, Source: src})
	}

	if len(req.Sources) == 0 && len(req.Targets) == 0 {
		for _, src := range p.source.Enabled() {
			indexes = append(indexes, indexJob{url: src.BaseURL, source: src.Key})
		}
	}

	seenSource := map[string]struct{}{}
	var targets []ports.Target
	for _, job := range indexes {
		if _, dup := seenSource[job.source]; dup {
			continue
		}
		seenSource[job.source] = struct{}{}

		src, err := p.source.Resolve(job.source)
		if err != nil {
			return nil, nil, err
		}
		found, err := p.source.Discover(ctx, src, req.Limit)
		if err != nil {
			p.logger.Warn("discover failed", "source", src.Name, "error", err)
			failures = append(failures, Failure{URL: job.url, Err: err})
			continue
		}
		p.logger.Info("discovered posts", "source", src.Name, "count", len(found))
		targets = append(targets, found...)
	}
	targets = append(targets, singles...)

	seen := map[string]struct{}{}
	unique := targets[:0]
	for _, t := range targets {
		if _, dup := seen[t.URL]; dup {
			continue
		}
		seen[t.URL] = struct{}{}
		unique = append(unique, t)
	}

	return unique, failures, nil
}

// scrapeAll fans targets out over a bounded pool. Each worker owns one
// result slot, so no locking is needed.
func (p *Pipeline) scrapeAll(ctx context.Context, targets []ports.Target, workers int) ([]domain.BlogPost, []Failure) {
	type result struct {
		post domain.BlogPost
		err  error
	}
	results := make([]result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, target := range targets {
		g.Go(func() error {
			post, err := p.source.ScrapePost(gctx, target)
			if err != nil {
				p.logger.Warn("scrape failed", "url", target.URL, "error", err)
			} else {
				p.logger.Info("scraped", "url", target.URL, "title", post.Title)
			}
			results[i] = result{post: post, err: err}
			return nil
		})
	}
	_ = g.Wait()

	var (
		posts    []domain.BlogPost
		failures []Failure
	)
	for i, r := range results {
		if r.err != nil {
			failures = append(failures, Failure{URL: targets[i].URL, Err: r.err})
			continue
		}
		posts = append(posts, r.post)
	}
	return posts, failures
}

// dedupe keeps the first post of every URL and drops posts without one.
func dedupe(posts []domain.BlogPost) []domain.BlogPost {
	seen := make(map[string]struct{}, len(posts))
	out := make([]domain.BlogPost, 0, len(posts))
	for _, post := range posts {
		if post.URL == "" {
			continue
		}
		if _, dup := seen[post.URL]; dup {
			continue
		}
		seen[post.URL] = struct{}{}
		out = append(out, post)
	}
	return out
}

func writeJSONFiles(dir string, posts []domain.BlogPost, stamp time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	files := make([]string, 0, len(posts))
	for i, post := range posts {
		name := fmt.Sprintf("%s_%s_%d.json", slug(post.Company), stamp.Format("20060102_150405"), i+1)
		path := filepath.Join(dir, name)

		payload, err := json.MarshalIndent(post, "", "  ")
		if err != nil {
			return files, fmt.Errorf("marshal post %s: %w", post.URL, err)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return files, fmt.Errorf("write %s: %w", path, err)
		}
		files = append(files, path)
	}
	return files, nil
}

func slug(value string) string {
	s := strings.Trim(slugExpr.ReplaceAllString(strings.ToLower(value), "-"), "-")
	if s == "" {
		return "post"
	}
	return s
}
