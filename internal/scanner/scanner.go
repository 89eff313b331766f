package scanner

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
)

// ErrUnknownSource is returned when a name or key matches no registered source.
var ErrUnknownSource = errors.New("unknown source")

// LinkExtractor pulls absolute post links out of a source's index page.
type LinkExtractor func(doc *goquery.Document, base *url.URL) []string

// PostExtractor maps a post page onto a BlogPost.
type PostExtractor func(doc *goquery.Document, pageURL string) domain.BlogPost

// ContentCleaner strips source-specific boilerplate from extracted text.
type ContentCleaner func(content string) string

// Source bundles the extraction rules of one blog. Clean is optional and
// applies to page and feed content alike.
type Source struct {
	Name     string
	Key      string
	BaseURL  string
	FeedURL  string
	Links    LinkExtractor
	Extract  PostExtractor
	Clean    ContentCleaner
	Disabled bool
}

// Host returns the lower-cased base URL hostname without a www. prefix.
func (s Source) Host() string {
	return hostOf(s.BaseURL)
}

// IsIndex reports whether rawURL points at the source's listing page.
func (s Source) IsIndex(rawURL string) bool {
	target, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	base, err := url.Parse(s.BaseURL)
	if err != nil {
		return false
	}
	if !strings.EqualFold(trimWWW(target.Host), trimWWW(base.Host)) {
		return false
	}
	path := strings.TrimSuffix(target.Path, "/")
	return path == "" || path == strings.TrimSuffix(base.Path, "/")
}

// Override replaces the endpoints of a registered source.
type Override struct {
	Key      string
	BaseURL  string
	FeedURL  string
	Disabled bool
}

// Registry keeps sources in registration order, addressable by key, name and host.
type Registry struct {
	order   []string
	sources map[string]Source
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]Source{}}
}

// Register adds or replaces a source.
func (r *Registry) Register(src Source) error {
	if src.Key == "" || src.Name == "" {
		return fmt.Errorf("source must have a key and a name")
	}
	if src.Extract == nil {
		return fmt.Errorf("source %s has no extractor", src.Key)
	}
	if _, err := url.Parse(src.BaseURL); err != nil {
		return fmt.Errorf("source %s: invalid base url: %w", src.Key, err)
	}
	if r.sources == nil {
		r.sources = map[string]Source{}
	}
	if _, ok := r.sources[src.Key]; !ok {
		r.order = append(r.order, src.Key)
	}
	r.sources[src.Key] = src
	return nil
}

// Resolve returns a source by key or display name, ignoring case.
func (r *Registry) Resolve(name string) (Source, error) {
	name = strings.TrimSpace(name)
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	for _, key := range r.order {
		src := r.sources[key]
		if strings.EqualFold(src.Key, name) || strings.EqualFold(src.Name, name) {
			return src, nil
		}
	}
	return Source{}, fmt.Errorf("%w: %s", ErrUnknownSource, name)
}

// ResolveURL selects the source whose base URL shares rawURL's host.
func (r *Registry) ResolveURL(rawURL string) (Source, bool) {
	host := hostOf(rawURL)
	if host == "" {
		return Source{}, false
	}
	for _, key := range r.order {
		src := r.sources[key]
		if src.Host() == host {
			return src, true
		}
	}
	return Source{}, false
}

// All lists sources in registration order, disabled ones included.
func (r *Registry) All() []Source {
	out := make([]Source, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.sources[key])
	}
	return out
}

// Enabled lists the sources that take part in a full scrape.
func (r *Registry) Enabled() []Source {
	var out []Source
	for _, src := range r.All() {
		if !src.Disabled {
			out = append(out, src)
		}
	}
	return out
}

// Configure applies endpoint overrides; unknown keys are an error.
func (r *Registry) Configure(overrides []Override) error {
	for _, o := range overrides {
		src, err := r.Resolve(o.Key)
		if err != nil {
			return err
		}
		if o.BaseURL != "" {
			src.BaseURL = o.BaseURL
		}
		if o.FeedURL != "" {
			src.FeedURL = o.FeedURL
		}
		src.Disabled = o.Disabled
		if err := r.Register(src); err != nil {
			return err
		}
	}
	return nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return trimWWW(strings.ToLower(u.Host))
}

func trimWWW(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
