package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DayLayout is the date format accepted for filter bounds.
const DayLayout = "2006-01-02"

// UntitledPost is stored when no extraction rule finds a title.
const UntitledPost = "Untitled"

// ErrInvalidDate is returned for filter dates that are not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date")

// BlogPost is the single persisted entity, keyed by URL.
type BlogPost struct {
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Author        string     `json:"author"`
	PublishedDate *time.Time `json:"published_date"`
	Company       string     `json:"company"`
	ScrapedAt     time.Time  `json:"scraped_at"`
}

// Normalize trims every text field and moves the published date to UTC.
func (p BlogPost) Normalize() BlogPost {
	p.URL = strings.TrimSpace(p.URL)
	p.Title = CollapseSpace(p.Title)
	if p.Title == "" {
		p.Title = UntitledPost
	}
	p.Content = strings.TrimSpace(p.Content)
	p.Author = CollapseSpace(p.Author)
	p.Company = strings.TrimSpace(p.Company)
	if p.PublishedDate != nil {
		utc := p.PublishedDate.UTC()
		p.PublishedDate = &utc
	}
	if !p.ScrapedAt.IsZero() {
		p.ScrapedAt = p.ScrapedAt.UTC()
	}
	return p
}

// CollapseSpace folds runs of whitespace into single spaces.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// PostFilter narrows stored posts; zero values match everything.
type PostFilter struct {
	Company  string
	Author   string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
}

// Validate rejects inverted date ranges and negative limits.
func (f PostFilter) Validate() error {
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return fmt.Errorf("%w: date-from %s is after date-to %s", ErrInvalidDate,
			f.DateFrom.Format(DayLayout), f.DateTo.Format(DayLayout))
	}
	if f.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", f.Limit)
	}
	return nil
}

// ParseDay parses a YYYY-MM-DD string into midnight UTC.
func ParseDay(value string) (time.Time, error) {
	day, err := time.Parse(DayLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, value)
	}
	return day, nil
}

// ParseOptionalDay returns nil for an empty string.
func ParseOptionalDay(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	day, err := ParseDay(value)
	if err != nil {
		return nil, err
	}
	return &day, nil
}
