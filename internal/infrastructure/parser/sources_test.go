package parser

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func assertDay(t *testing.T, got *time.Time, year int, month time.Month, day int) {
	t.Helper()
	require.NotNil(t, got, "published date")
	assert.Equal(t, year, got.Year())
	assert.Equal(t, month, got.Month())
	assert.Equal(t, day, got.Day())
}

const articlePostHTML = `
<html>
  <body>
    <h1>Test Blog Post Title</h1>
    <time datetime="2024-03-15T10:00:00Z">March 15, 2024</time>
    <div class="author">John Doe</div>
    <article>
      <p>This is the first paragraph.</p>
      <p>This is the second paragraph.</p>
    </article>
  </body>
</html>`

func TestGoogleResearchLinks(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><body>
	  <a class="glue-card not-glue" href="/blog/2024/01/test-post-1">Post 1</a>
	  <a class="glue-card not-glue" href="/blog/2024/02/test-post-2">Post 2</a>
	  <a class="glue-card" href="/blog/2024/01/test-post-1">Duplicate</a>
	  <a class="not-a-blog-post" href="/about">About</a>
	</body></html>`)

	links := googleResearchLinks(doc, mustURL(t, "https://research.google/blog/"))
	assert.Equal(t, []string{
		"https://research.google/blog/2024/01/test-post-1",
		"https://research.google/blog/2024/02/test-post-2",
	}, links)
}

func TestGoogleResearchPost(t *testing.T) {
	t.Parallel()

	post := googleResearchPost(mustDoc(t, articlePostHTML), "https://research.google/blog/test-post")

	assert.Equal(t, "https://research.google/blog/test-post", post.URL)
	assert.Equal(t, "Test Blog Post Title", post.Title)
	assert.Equal(t, "John Doe", post.Author)
	assert.Equal(t, "Google Research", post.Company)
	assertDay(t, post.PublishedDate, 2024, time.March, 15)
	assert.Equal(t, "This is the first paragraph.\nThis is the second paragraph.", post.Content)
}

func TestGoogleResearchPostHeroAndSections(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><body>
	  <h1>Hero Title</h1>
	  <div class="basic-hero__description">May 2, 2024, Jane Roe, Research Scientist, Google Research</div>
	  <div class="component-intro"><p>Intro text.</p></div>
	  <div class="rich-text"><p>Body one.</p><p>Body two.</p></div>
	</body></html>`)

	post := googleResearchPost(doc, "https://research.google/blog/hero")

	assert.Equal(t, "Jane Roe", post.Author)
	assertDay(t, post.PublishedDate, 2024, time.May, 2)
	assert.Equal(t, "Intro text.\n\nBody one.\nBody two.", post.Content)
}

func TestGoogleResearchPostMissingFields(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><h1>Test Title</h1><article><p>Some content</p></article></body></html>`)
	post := googleResearchPost(doc, "https://research.google/blog/test-post")

	assert.Equal(t, "Test Title", post.Title)
	assert.Empty(t, post.Author)
	assert.Nil(t, post.PublishedDate)
	assert.Contains(t, post.Content, "Some content")
}

func TestAllThingsDistributedLinks(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><body>
	  <div itemprop="blogPost"><a href="/2024/01/test-post-1">Post 1</a></div>
	  <div itemprop="blogPost"><a href="/2024/02/test-post-2">Post 2</a></div>
	  <div class="not-a-blog-post"><a href="/about">About</a></div>
	</body></html>`)

	links := allThingsDistributedLinks(doc, mustURL(t, "https://www.allthingsdistributed.com/articles.html"))
	assert.Equal(t, []string{
		"https://www.allthingsdistributed.com/2024/01/test-post-1",
		"https://www.allthingsdistributed.com/2024/02/test-post-2",
	}, links)
}

func TestAllThingsDistributedPost(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><body>
	  <h1>Test Blog Post Title</h1>
	  <time>April 09, 2024</time>
	  <article><p>This is the first paragraph.</p><p>This is the second paragraph.</p></article>
	</body></html>`)

	post := allThingsDistributedPost(doc, "https://www.allthingsdistributed.com/test-post")

	assert.Equal(t, "Test Blog Post Title", post.Title)
	assert.Equal(t, "Werner Vogels", post.Author)
	assert.Equal(t, "AllThingsDistributed", post.Company)
	assertDay(t, post.PublishedDate, 2024, time.April, 9)
	assert.Contains(t, post.Content, "This is the first paragraph")
	assert.Contains(t, post.Content, "This is the second paragraph")
}

func TestAllThingsDistributedTitlePriority(t *testing.T) {
	t.Parallel()

	body := `<body><div class="post-content"><p>Some content</p></div></body>`
	cases := map[string]struct {
		head string
		body string
		want string
	}{
		"og title":   {head: `<meta property="og:title" content="OG Title Test">`, want: "OG Title Test"},
		"itemprop":   {head: `<meta itemprop="name" content="Schema.org Title Test">`, want: "Schema.org Title Test"},
		"json-ld":    {head: `<script type="application/ld+json">{ "headline": "JSON-LD Title Test" }</script>`, want: "JSON-LD Title Test"},
		"title tag":  {head: `<title>Title Tag Test | All Things Distributed</title>`, want: "Title Tag Test"},
		"h1 only":    {body: `<body><h1>Test Title</h1><div class="post-content"><p>Some content</p></div></body>`, want: "Test Title"},
		"no title":   {want: "Untitled"},
		"all of them": {
			head: `<meta property="og:title" content="OG Title">
			       <meta itemprop="name" content="Schema.org Title">
			       <script type="application/ld+json">{"headline": "JSON-LD Title"}</script>
			       <title>Title Tag | All Things Distributed</title>`,
			body: `<body><h1>H1 Title</h1><div class="post-content"><p>Some content</p></div></body>`,
			want: "OG Title",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			b := tc.body
			if b == "" {
				b = body
			}
			doc := mustDoc(t, "<html><head>"+tc.head+"</head>"+b+"</html>")
			post := allThingsDistributedPost(doc, "https://www.allthingsdistributed.com/test-post")

			assert.Equal(t, tc.want, post.Title)
			assert.Equal(t, "Werner Vogels", post.Author)
			assert.Nil(t, post.PublishedDate)
			assert.Equal(t, "Some content", post.Content)
		})
	}
}

func TestKleppmannLinks(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><body>
	  <li class="archive-item"><a href="/2024/01/test-post-1">Post 1</a></li>
	  <li class="archive-item"><a href="/2024/02/test-post-2">Post 2</a></li>
	  <li class="not-archive-item"><a href="/about">About</a></li>
	</body></html>`)

	links := kleppmannLinks(doc, mustURL(t, "https://martin.kleppmann.com/"))
	assert.Equal(t, []string{
		"https://martin.kleppmann.com/2024/01/test-post-1",
		"https://martin.kleppmann.com/2024/02/test-post-2",
	}, links)
}

func TestKleppmannPost(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><body>
	  <h1>Test Blog Post Title</h1>
	  <div class="date">15 April 2024</div>
	  <div class="post"><p>This is the first paragraph.</p><p>This is the second paragraph.</p></div>
	</body></html>`)

	post := kleppmannPost(doc, "https://martin.kleppmann.com/test-post")

	assert.Equal(t, "Test Blog Post Title", post.Title)
	assert.Equal(t, "Martin Kleppmann", post.Author)
	assert.Equal(t, "Martin Kleppmann", post.Company)
	assertDay(t, post.PublishedDate, 2024, time.April, 15)
	assert.Equal(t, "This is the first paragraph.\nThis is the second paragraph.", post.Content)
}

func TestKleppmannPostMissingFields(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><h1>Test Title</h1><div class="post"><p>Some content</p></div></body></html>`)
	post := kleppmannPost(doc, "https://martin.kleppmann.com/test-post")

	assert.Equal(t, "Test Title", post.Title)
	assert.Equal(t, "Martin Kleppmann", post.Author)
	assert.Nil(t, post.PublishedDate)
	assert.Equal(t, "Some content", post.Content)
}

func TestLyftEngineering(t *testing.T) {
	t.Parallel()

	index := mustDoc(t, `
	<html><body>
	  <article><a href="/2024/01/test-post-1">Post 1</a></article>
	  <article><a href="/2024/02/test-post-2">Post 2</a></article>
	  <div class="not-article"><a href="/about">About</a></div>
	</body></html>`)
	links := lyftEngineeringLinks(index, mustURL(t, "https://eng.lyft.com/"))
	assert.Equal(t, []string{
		"https://eng.lyft.com/2024/01/test-post-1",
		"https://eng.lyft.com/2024/02/test-post-2",
	}, links)

	post := lyftEngineeringPost(mustDoc(t, articlePostHTML), "https://eng.lyft.com/test-post")
	assert.Equal(t, "Test Blog Post Title", post.Title)
	assert.Equal(t, "John Doe", post.Author)
	assert.Equal(t, "Lyft Engineering", post.Company)
	assertDay(t, post.PublishedDate, 2024, time.March, 15)
	assert.Contains(t, post.Content, "This is the second paragraph")

	minimal := lyftEngineeringPost(mustDoc(t, `<html><body><h1>Test Title</h1><article><p>Some content</p></article></body></html>`), "https://eng.lyft.com/x")
	assert.Empty(t, minimal.Author)
	assert.Nil(t, minimal.PublishedDate)
	assert.Equal(t, "Some content", minimal.Content)
}

func TestMetaEngineeringPost(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><head>
	  <meta property="og:title" content="Scaling Things">
	  <meta property="article:published_time" content="2024-06-01T12:30:00+00:00">
	  <meta name="author" content="Alex Example">
	</head><body>
	  <div class="entry-content">
	    <p>Real   paragraph one.</p>
	    <p>Read More...</p>
	    <p>The post Scaling Things appeared first on Engineering at Meta.</p>
	  </div>
	</body></html>`)

	post := metaEngineeringPost(doc, "https://engineering.fb.com/2024/06/01/scaling")

	assert.Equal(t, "Scaling Things", post.Title)
	assert.Equal(t, "Alex Example", post.Author)
	assert.Equal(t, "Meta Engineering", post.Company)
	assertDay(t, post.PublishedDate, 2024, time.June, 1)
	assert.Equal(t, "Real paragraph one.", post.Content)
}

func TestGenericPost(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `
	<html><head>
	  <title>Generic Page</title>
	  <meta name="author" content="Sam Writer">
	  <meta property="article:published_time" content="2023-11-20T08:00:00Z">
	</head><body>
	  <h1>Generic Page</h1>
	  <article>
	    <p>Distributed systems are hard because partial failure is the normal case, and every component must be ready for it.</p>
	    <p>Replication, consensus and careful timeouts are the usual tools, and each of them comes with trade-offs worth studying.</p>
	  </article>
	</body></html>`)

	post := genericPost(doc, "https://www.example.com/posts/1")

	assert.Equal(t, "example.com", post.Company)
	assert.Equal(t, "Sam Writer", post.Author)
	assertDay(t, post.PublishedDate, 2023, time.November, 20)
	assert.Contains(t, post.Title, "Generic Page")
	assert.Contains(t, post.Content, "partial failure is the normal case")
}

func TestGenericAuthorByline(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><span class="byline">Written by Kim Lee</span><p>2022-02-03 notes</p></body></html>`)

	assert.Equal(t, "Kim Lee", genericAuthor(doc))
	assertDay(t, genericDate(doc), 2022, time.February, 3)
}

func TestBuiltinRegistry(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(nil)
	require.NoError(t, err)
	require.Len(t, reg.All(), 5)

	src, ok := reg.ResolveURL("https://allthingsdistributed.com/2024/01/x.html")
	require.True(t, ok)
	assert.Equal(t, "AllThingsDistributed", src.Name)

	src, err = reg.Resolve("Google Research")
	require.NoError(t, err)
	assert.Equal(t, "https://research.google/blog/rss/", src.FeedURL)
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	assertDay(t, parseTimestamp("2024-03-15T10:00:00Z"), 2024, time.March, 15)
	assertDay(t, parseTimestamp("2024-03-15T23:30:00-05:00"), 2024, time.March, 16)
	assertDay(t, parseTimestamp("2024-03-15"), 2024, time.March, 15)
	assertDay(t, parseTimestamp("Fri, 15 Mar 2024 10:00:00 GMT"), 2024, time.March, 15)
	assert.Nil(t, parseTimestamp(""))
	assert.Nil(t, parseTimestamp("not a date"))
}
