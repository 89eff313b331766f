package parser

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

const (
	kleppmannName = "Martin Kleppmann"
	kleppmannKey  = "kleppmann"
)

// Kleppmann covers martin.kleppmann.com.
func Kleppmann() scanner.Source {
	return scanner.Source{
		Name:    kleppmannName,
		Key:     kleppmannKey,
		BaseURL: "https://martin.kleppmann.com/",
		Links:   kleppmannLinks,
		Extract: kleppmannPost,
	}
}

func kleppmannLinks(doc *goquery.Document, base *url.URL) []string {
	return resolveLinks(doc.Find("li.archive-item a[href]"), base)
}

func kleppmannPost(doc *goquery.Document, pageURL string) domain.BlogPost {
	post := domain.BlogPost{
		URL:           pageURL,
		Title:         firstText(doc, "h1"),
		Content:       textLines(doc.Find("div.post").First()),
		Author:        kleppmannName,
		PublishedDate: parseLayout("2 January 2006", doc.Find("div.date").First().Text()),
		Company:       kleppmannName,
	}
	return post.Normalize()
}
