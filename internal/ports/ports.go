package ports

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

// FeedEntry is one item of an RSS or Atom index.
type FeedEntry struct {
	URL           string
	Title         string
	Author        string
	ContentHTML   string
	PublishedDate *time.Time
}

// PageFetcher downloads post and index pages.
type PageFetcher interface {
	Document(ctx context.Context, pageURL string) (*goquery.Document, error)
	Feed(ctx context.Context, feedURL string) ([]FeedEntry, error)
}

// Target is one post URL waiting to be scraped.
type Target struct {
	URL    string
	Source scanner.Source
	// Entry is set when the link came from a feed.
	Entry *FeedEntry
}

// PostSource discovers post links and extracts posts with per-source strategies.
type PostSource interface {
	Classify(rawURL string) (src scanner.Source, index bool, err error)
	Resolve(name string) (scanner.Source, error)
	Enabled() []scanner.Source
	Discover(ctx context.Context, src scanner.Source, limit int) ([]Target, error)
	ScrapePost(ctx context.Context, target Target) (domain.BlogPost, error)
}

// PostRepository persists scraped posts keyed by URL.
type PostRepository interface {
	Upsert(ctx context.Context, posts []domain.BlogPost) (int, error)
	List(ctx context.Context, filter domain.PostFilter) ([]domain.BlogPost, error)
	Get(ctx context.Context, url string) (domain.BlogPost, error)
	Count(ctx context.Context, filter domain.PostFilter) (int, error)
}
