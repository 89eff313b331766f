package parser

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

// GenericKey identifies the fallback strategy for hosts without a source.
const GenericKey = "generic"

var bylineExpr = regexp.MustCompile(`(?i)^(?:written by|posted by|author:|by)\s+(.+)$`)

// Generic is used for URLs whose host matches no registered source.
// Its company is the page hostname.
func Generic() scanner.Source {
	return scanner.Source{
		Name:    "Generic",
		Key:     GenericKey,
		Extract: genericPost,
	}
}

func genericPost(doc *goquery.Document, pageURL string) domain.BlogPost {
	post := domain.BlogPost{
		URL:           pageURL,
		Author:        genericAuthor(doc),
		PublishedDate: genericDate(doc),
	}

	parsed, err := url.Parse(pageURL)
	if err == nil {
		post.Company = strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	}

	if raw, htmlErr := doc.Html(); htmlErr == nil && err == nil {
		if article, rErr := readability.FromReader(strings.NewReader(raw), parsed); rErr == nil {
			post.Title = strings.TrimSpace(article.Title)
			post.Content = normalizeLines(article.TextContent)
		}
	}

	if post.Title == "" {
		post.Title = firstNonEmpty(pageTitle(doc), firstText(doc, "h1"))
	}
	if post.Content == "" {
		post.Content = genericContent(doc)
	}

	return post.Normalize()
}

func genericContent(doc *goquery.Document) string {
	for _, selector := range []string{
		"article",
		`[class*="article"], [class*="post"], [class*="content"], [class*="entry"]`,
		`[id*="article"], [id*="post"], [id*="content"], [id*="entry"]`,
	} {
		if text := textLines(doc.Find(selector).First()); text != "" {
			return text
		}
	}
	return paragraphs(doc.Selection)
}

func genericAuthor(doc *goquery.Document) string {
	if author := firstNonEmpty(
		metaContent(doc, `meta[property="article:author"]`),
		metaContent(doc, `meta[name="author"]`),
	); author != "" {
		return author
	}

	var author string
	doc.Find(`[class*="byline"], [class*="author"], [rel="author"], p, span, div`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.Children().Length() > 0 {
			return true
		}
		text := domain.CollapseSpace(s.Text())
		if text == "" || len(text) > 80 {
			return true
		}
		if m := bylineExpr.FindStringSubmatch(text); m != nil {
			author = strings.TrimSpace(m[1])
			return false
		}
		return true
	})
	return author
}

func genericDate(doc *goquery.Document) *time.Time {
	if t := parseTimestamp(metaContent(doc, `meta[property="article:published_time"]`)); t != nil {
		return t
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		if t := parseTimestamp(dt); t != nil {
			return t
		}
	}
	if day := isoDayExpr.FindString(doc.Text()); day != "" {
		return parseTimestamp(day)
	}
	return nil
}

func normalizeLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = domain.CollapseSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
