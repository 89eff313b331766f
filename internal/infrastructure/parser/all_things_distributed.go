package parser

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"BlogScraper/internal/domain"
	"BlogScraper/internal/scanner"
)

const (
	allThingsDistributedName   = "AllThingsDistributed"
	allThingsDistributedKey    = "all-things-distributed"
	allThingsDistributedAuthor = "Werner Vogels"
)

// AllThingsDistributed covers Werner Vogels' blog.
func AllThingsDistributed() scanner.Source {
	return scanner.Source{
		Name:    allThingsDistributedName,
		Key:     allThingsDistributedKey,
		BaseURL: "https://www.allthingsdistributed.com/articles.html",
		Links:   allThingsDistributedLinks,
		Extract: allThingsDistributedPost,
	}
}

func allThingsDistributedLinks(doc *goquery.Document, base *url.URL) []string {
	return resolveLinks(doc.Find(`[itemprop="blogPost"] a[href]`), base)
}

func allThingsDistributedPost(doc *goquery.Document, pageURL string) domain.BlogPost {
	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[itemprop="name"]`),
		jsonLDHeadline(doc),
		firstText(doc, "h1"),
		pageTitle(doc),
	)

	body := doc.Find("article").First()
	if body.Length() == 0 {
		body = doc.Find("div.post-content").First()
	}

	post := domain.BlogPost{
		URL:           pageURL,
		Title:         title,
		Content:       paragraphs(body),
		Author:        allThingsDistributedAuthor,
		PublishedDate: parseLayout("January 2, 2006", doc.Find("time").First().Text()),
		Company:       allThingsDistributedName,
	}
	return post.Normalize()
}
