package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"BlogScraper/internal/config"
	"BlogScraper/internal/ports"
)

// ErrUnexpectedStatus is wrapped by every non-200 response error.
var ErrUnexpectedStatus = errors.New("unexpected status")

const maxBodyBytes = 10 << 20

// Fetcher downloads pages and feeds with browser-like headers and a
// per-host politeness interval.
type Fetcher struct {
	client    *http.Client
	userAgent string
	interval  time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// New builds a fetcher; a nil client gets one with the configured timeout.
func New(cfg config.HTTPConfig, client *http.Client, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Fetcher{
		client:    client,
		userAgent: cfg.UserAgent,
		interval:  cfg.RequestInterval,
		logger:    log,
		limiters:  map[string]*rate.Limiter{},
	}
}

// Document fetches pageURL and parses it as HTML.
func (f *Fetcher) Document(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := f.get(ctx, pageURL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", pageURL, err)
	}
	return doc, nil
}

// Feed fetches an RSS or Atom feed and flattens its items.
func (f *Fetcher) Feed(ctx context.Context, feedURL string) ([]ports.FeedEntry, error) {
	body, err := f.get(ctx, feedURL, "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	entries := make([]ports.FeedEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		entry := ports.FeedEntry{
			URL:         strings.TrimSpace(item.Link),
			Title:       strings.TrimSpace(item.Title),
			ContentHTML: item.Content,
		}
		if entry.ContentHTML == "" {
			entry.ContentHTML = item.Description
		}
		if item.Author != nil {
			entry.Author = strings.TrimSpace(item.Author.Name)
		} else if len(item.Authors) > 0 && item.Authors[0] != nil {
			entry.Author = strings.TrimSpace(item.Authors[0].Name)
		}
		switch {
		case item.PublishedParsed != nil:
			published := item.PublishedParsed.UTC()
			entry.PublishedDate = &published
		case item.UpdatedParsed != nil:
			updated := item.UpdatedParsed.UTC()
			entry.PublishedDate = &updated
		}
		entries = append(entries, entry)
	}

	f.debug("feed parsed", "url", feedURL, "items", len(entries))
	return entries, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL, accept string) (io.ReadCloser, error) {
	if err := f.wait(ctx, rawURL); err != nil {
		return nil, fmt.Errorf("wait for %s: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "max-age=0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("%w: %s returned %s", ErrUnexpectedStatus, rawURL, resp.Status)
	}

	f.debug("fetched", "url", rawURL, "status", resp.StatusCode)
	return resp.Body, nil
}

// wait blocks until the host of rawURL may be hit again.
func (f *Fetcher) wait(ctx context.Context, rawURL string) error {
	if f.interval <= 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	host := strings.ToLower(u.Host)

	f.mu.Lock()
	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(f.interval), 1)
		f.limiters[host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

func (f *Fetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
