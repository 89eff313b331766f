package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

const (
	googleResearchName = "Google Research"
	googleResearchKey  = "google-research"
)

// GoogleResearch covers research.google/blog.
func GoogleResearch() scanner.Source {
	return scanner.Source{
		Name:    googleResearchName,
		Key:     googleResearchKey,
		BaseURL: "https://research.google/blog/",
		FeedURL: "https://research.google/blog/rss/",
		Links:   googleResearchLinks,
		Extract: googleResearchPost,
	}
}

func googleResearchLinks(doc *goquery.Document, base *url.URL) []string {
	return resolveLinks(doc.Find("a.glue-card[href]"), base)
}

func googleResearchPost(doc *goquery.Document, pageURL string) domain.BlogPost {
	post := domain.BlogPost{
		URL:     pageURL,
		Title:   firstText(doc, "h1"),
		Author:  firstText(doc, ".author"),
		Company: googleResearchName,
	}

	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		post.PublishedDate = parseTimestamp(dt)
	}

	// The hero reads "March 15, 2024, Jane Doe, Research Scientist, ...".
	hero := domain.CollapseSpace(doc.Find(".basic-hero__description").First().Text())
	if loc := longDayExpr.FindStringIndex(hero); loc != nil {
		if post.PublishedDate == nil {
			post.PublishedDate = parseLayout("January 2, 2006", hero[loc[0]:loc[1]])
		}
		if post.Author == "" {
			rest := strings.TrimPrefix(strings.TrimSpace(hero[loc[1]:]), ",")
			post.Author = strings.TrimSpace(strings.Split(rest, ",")[0])
		}
	}

	var sections []string
	doc.Find(".rich-text, .component-intro, .blog-summary__summary").Each(func(_ int, s *goquery.Selection) {
		if text := textLines(s); text != "" {
			sections = append(sections, text)
		}
	})
	post.Content = strings.Join(sections, "\n\n")
	if post.Content == "" {
		post.Content = paragraphs(doc.Find("article"))
	}

	return post.Normalize()
}
