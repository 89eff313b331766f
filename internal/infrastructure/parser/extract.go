package parser

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"BlogScraper/internal/domain"
)

var (
	isoDayExpr  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	longDayExpr = regexp.MustCompile(`[A-Z][a-z]+ \d{1,2}, \d{4}`)
)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	domain.DayLayout,
}

// resolveLinks turns the href of every selected anchor into an absolute URL,
// keeping document order and dropping duplicates and fragment-only links.
func resolveLinks(anchors *goquery.Selection, base *url.URL) []string {
	seen := map[string]struct{}{}
	links := make([]string, 0, anchors.Length())

	anchors.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		abs := ref
		if base != nil {
			abs = base.ResolveReference(ref)
		}
		abs.Fragment = ""
		link := abs.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func firstText(doc *goquery.Document, selector string) string {
	return domain.CollapseSpace(doc.Find(selector).First().Text())
}

// paragraphs joins the non-empty <p> texts below sel, one per line.
func paragraphs(sel *goquery.Selection) string {
	var lines []string
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := domain.CollapseSpace(p.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	return strings.Join(lines, "\n")
}

// textLines returns every non-empty text node below sel, one per line.
func textLines(sel *goquery.Selection) string {
	return strings.Join(collectText(sel), "\n")
}

func collectText(sel *goquery.Selection) []string {
	var lines []string
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		switch goquery.NodeName(node) {
		case "#text":
			if text := domain.CollapseSpace(node.Text()); text != "" {
				lines = append(lines, text)
			}
		case "script", "style", "noscript", "#comment":
		default:
			lines = append(lines, collectText(node)...)
		}
	})
	return lines
}

// parseTimestamp accepts the machine-readable forms found in datetime
// attributes and meta tags, then anything dateparse recognizes.
func parseTimestamp(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			utc := t.UTC()
			return &utc
		}
	}
	t, err := dateparse.ParseIn(value, time.UTC)
	if err != nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

func parseLayout(layout, value string) *time.Time {
	t, err := time.Parse(layout, domain.CollapseSpace(value))
	if err != nil {
		return nil
	}
	return &t
}

func jsonLDHeadline(doc *goquery.Document) string {
	var headline string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &payload); err != nil {
			return true
		}
		if h, ok := payload["headline"].(string); ok && strings.TrimSpace(h) != "" {
			headline = strings.TrimSpace(h)
			return false
		}
		return true
	})
	return headline
}

// pageTitle strips a " | Site Name" suffix from the <title> element.
func pageTitle(doc *goquery.Document) string {
	title := firstText(doc, "title")
	if i := strings.Index(title, " | "); i >= 0 {
		title = title[:i]
	}
	return strings.TrimSpace(title)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
