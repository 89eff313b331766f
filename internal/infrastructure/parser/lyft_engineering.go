package parser

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

const (
	lyftEngineeringName = "Lyft Engineering"
	lyftEngineeringKey  = "lyft-engineering"
)

// LyftEngineering covers eng.lyft.com; its index is the Medium feed.
func LyftEngineering() scanner.Source {
	return scanner.Source{
		Name:    lyftEngineeringName,
		Key:     lyftEngineeringKey,
		BaseURL: "https://eng.lyft.com/",
		FeedURL: "https://medium.com/feed/lyft-engineering",
		Links:   lyftEngineeringLinks,
		Extract: lyftEngineeringPost,
	}
}

func lyftEngineeringLinks(doc *goquery.Document, base *url.URL) []string {
	return resolveLinks(doc.Find("article a[href]"), base)
}

func lyftEngineeringPost(doc *goquery.Document, pageURL string) domain.BlogPost {
	post := domain.BlogPost{
		URL:   pageURL,
		Title: firstText(doc, "h1"),
		Author: firstNonEmpty(
			firstText(doc, ".author"),
			metaContent(doc, `meta[name="author"]`),
		),
		Content: paragraphs(doc.Find("article").First()),
		Company: lyftEngineeringName,
	}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		post.PublishedDate = parseTimestamp(dt)
	}
	if post.PublishedDate == nil {
		post.PublishedDate = parseTimestamp(metaContent(doc, `meta[property="article:published_time"]`))
	}
	return post.Normalize()
}
