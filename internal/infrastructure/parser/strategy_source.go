package parser

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/ports"
	"BlogScraper/internal/scanner"
)

var blockBreaks = strings.NewReplacer(
	"</p>", "</p>\n",
	"<br>", "\n",
	"<br/>", "\n",
	"<br />", "\n",
	"</li>", "</li>\n",
	"</h2>", "</h2>\n",
	"</h3>", "</h3>\n",
	"</pre>", "</pre>\n",
	"</blockquote>", "</blockquote>\n",
)

// StrategySource runs the registered extraction strategies against fetched pages.
type StrategySource struct {
	registry *scanner.Registry
	fetcher  ports.PageFetcher
	generic  scanner.Source
	text     *bluemonday.Policy
	logger   *slog.Logger
}

// NewStrategySource wires the source registry with a page fetcher.
func NewStrategySource(reg *scanner.Registry, fetcher ports.PageFetcher, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		fetcher:  fetcher,
		generic:  Generic(),
		text:     bluemonday.StrictPolicy(),
		logger:   log,
	}
}

var _ ports.PostSource = (*StrategySource)(nil)

// Resolve looks a source up by key or display name.
func (s *StrategySource) Resolve(name string) (scanner.Source, error) {
	if s.registry == nil {
		return scanner.Source{}, fmt.Errorf("%w: %s", scanner.ErrUnknownSource, name)
	}
	return s.registry.Resolve(name)
}

// Enabled lists the sources scraped when no target is given.
func (s *StrategySource) Enabled() []scanner.Source {
	if s.registry == nil {
		return nil
	}
	return s.registry.Enabled()
}

// Classify maps a user supplied URL onto its source. The second return value
// reports whether the URL is the source's index page.
func (s *StrategySource) Classify(rawURL string) (scanner.Source, bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return scanner.Source{}, false, fmt.Errorf("invalid url %q", rawURL)
	}
	if s.registry != nil {
		if src, ok := s.registry.ResolveURL(rawURL); ok {
			return src, src.IsIndex(rawURL), nil
		}
	}
	return s.generic, false, nil
}

// Discover lists up to limit post links of a source; limit <= 0 means all.
// Sources with a feed are listed from the feed, the rest from their index page.
func (s *StrategySource) Discover(ctx context.Context, src scanner.Source, limit int) ([]ports.Target, error) {
	if s.fetcher == nil {
		return nil, fmt.Errorf("page fetcher is not configured")
	}

	var targets []ports.Target
	if src.FeedURL != "" {
		entries, err := s.fetcher.Feed(ctx, src.FeedURL)
		if err != nil {
			return nil, fmt.Errorf("source %s feed: %w", src.Name, err)
		}
		seen := map[string]struct{}{}
		for i := range entries {
			entry := entries[i]
			if entry.URL == "" {
				continue
			}
			if _, dup := seen[entry.URL]; dup {
				continue
			}
			seen[entry.URL] = struct{}{}
			targets = append(targets, ports.Target{URL: entry.URL, Source: src, Entry: &entry})
		}
	} else {
		if src.Links == nil {
			return nil, fmt.Errorf("source %s has no link extractor", src.Name)
		}
		base, err := url.Parse(src.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("source %s: invalid base url: %w", src.Name, err)
		}
		doc, err := s.fetcher.Document(ctx, src.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("source %s index: %w", src.Name, err)
		}
		for _, link := range src.Links(doc, base) {
			targets = append(targets, ports.Target{URL: link, Source: src})
		}
	}

	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}
	s.debug("discovered posts", "source", src.Name, "count", len(targets))
	return targets, nil
}

// ScrapePost fetches one page and extracts it with the target's strategy.
// Fields the page leaves empty are filled from the feed entry, if any, and
// the source's cleaner runs on whichever content was kept.
func (s *StrategySource) ScrapePost(ctx context.Context, target ports.Target) (domain.BlogPost, error) {
	if s.fetcher == nil {
		return domain.BlogPost{}, fmt.Errorf("page fetcher is not configured")
	}
	extract := target.Source.Extract
	if extract == nil {
		extract = s.generic.Extract
	}

	var post domain.BlogPost
	doc, err := s.fetcher.Document(ctx, target.URL)
	switch {
	case err == nil:
		post = extract(doc, target.URL)
		if target.Entry != nil {
			post = s.fromFeed(post, target.Entry)
		}
	case target.Entry != nil && target.Entry.ContentHTML != "":
		s.debug("page fetch failed, using feed entry", "url", target.URL, "error", err)
		post = s.fromFeed(domain.BlogPost{URL: target.URL, Company: target.Source.Name}, target.Entry)
	default:
		return domain.BlogPost{}, err
	}

	if target.Source.Clean != nil {
		post.Content = target.Source.Clean(post.Content)
	}
	if post.Content == "" {
		return domain.BlogPost{}, fmt.Errorf("no content extracted from %s", target.URL)
	}
	return post, nil
}

func (s *StrategySource) fromFeed(post domain.BlogPost, entry *ports.FeedEntry) domain.BlogPost {
	if post.Title == "" || post.Title == domain.UntitledPost {
		post.Title = entry.Title
	}
	if post.Author == "" {
		post.Author = entry.Author
	}
	if post.PublishedDate == nil {
		post.PublishedDate = entry.PublishedDate
	}
	if post.Content == "" && entry.ContentHTML != "" {
		post.Content = s.htmlToText(entry.ContentHTML)
	}
	return post.Normalize()
}

// htmlToText strips markup from feed HTML, keeping block boundaries as newlines.
func (s *StrategySource) htmlToText(fragment string) string {
	fragment = blockBreaks.Replace(fragment)
	text := html.UnescapeString(s.text.Sanitize(fragment))
	return normalizeLines(text)
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
