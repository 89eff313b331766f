// Package export serializes stored posts as JSON or CSV.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"BlogScraper/internal/domain"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ErrUnknownFormat is returned for anything other than json or csv.
var ErrUnknownFormat = errors.New("unknown export format")

// Header is the CSV column order; it matches the JSON field names.
var Header = []string{"url", "title", "content", "author", "published_date", "company", "scraped_at"}

// ParseFormat accepts a format name in any case.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q (want json or csv)", ErrUnknownFormat, value)
	}
}

// Write encodes posts to w in the requested format.
func Write(w io.Writer, format Format, posts []domain.BlogPost) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, posts)
	case FormatCSV:
		return WriteCSV(w, posts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes an indented array; an empty batch is "[]".
func WriteJSON(w io.Writer, posts []domain.BlogPost) error {
	if posts == nil {
		posts = []domain.BlogPost{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(posts); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteCSV writes a header row followed by one row per post.
func WriteCSV(w io.Writer, posts []domain.BlogPost) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, post := range posts {
		if err := cw.Write(Record(post)); err != nil {
			return fmt.Errorf("write csv row %s: %w", post.URL, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Record flattens a post into CSV cells in Header order.
func Record(post domain.BlogPost) []string {
	published := ""
	if post.PublishedDate != nil {
		published = post.PublishedDate.UTC().Format(time.RFC3339)
	}
	scraped := ""
	if !post.ScrapedAt.IsZero() {
		scraped = post.ScrapedAt.UTC().Format(time.RFC3339)
	}
	return []string{
		post.URL,
		post.Title,
		post.Content,
		post.Author,
		published,
		post.Company,
		scraped,
	}
}
