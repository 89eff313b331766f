package parser

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

const (
	metaEngineeringName = "Meta Engineering"
	metaEngineeringKey  = "meta-engineering"
)

var metaFooterExpr = regexp.MustCompile(`(?s)The post .*? appeared first on Engineering at Meta\.?`)

// MetaEngineering covers engineering.fb.com.
func MetaEngineering() scanner.Source {
	return scanner.Source{
		Name:    metaEngineeringName,
		Key:     metaEngineeringKey,
		BaseURL: "https://engineering.fb.com/",
		FeedURL: "https://engineering.fb.com/feed/",
		Links:   metaEngineeringLinks,
		Extract: metaEngineeringPost,
		Clean:   cleanMetaContent,
	}
}

func metaEngineeringLinks(doc *goquery.Document, base *url.URL) []string {
	return resolveLinks(doc.Find("article h2 a[href], article .entry-title a[href]"), base)
}

func metaEngineeringPost(doc *goquery.Document, pageURL string) domain.BlogPost {
	post := domain.BlogPost{
		URL: pageURL,
		Title: firstNonEmpty(
			metaContent(doc, `meta[property="og:title"]`),
			firstText(doc, "h1"),
		),
		Author: firstNonEmpty(
			metaContent(doc, `meta[name="author"]`),
			firstText(doc, ".entry-author a, .author"),
		),
		PublishedDate: parseTimestamp(metaContent(doc, `meta[property="article:published_time"]`)),
		Content:       cleanMetaContent(paragraphs(doc.Find(".entry-content").First())),
		Company:       metaEngineeringName,
	}
	return post.Normalize()
}

// cleanMetaContent drops the boilerplate the feed appends to every post.
// It is idempotent, so page content may pass through it twice.
func cleanMetaContent(content string) string {
	content = metaFooterExpr.ReplaceAllString(content, "")
	content = strings.ReplaceAll(content, "Read More...", "")

	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
