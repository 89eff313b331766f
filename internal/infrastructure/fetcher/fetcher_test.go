package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BlogScraper/internal/config"
	"BlogScraper/internal/logging"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
  <channel>
    <title>Engineering</title>
    <link>https://example.com/</link>
    <item>
      <title>First Post</title>
      <link>https://example.com/first</link>
      <dc:creator>Ada Lovelace</dc:creator>
      <pubDate>Fri, 15 Mar 2024 10:00:00 +0100</pubDate>
      <content:encoded><![CDATA[<p>Full body</p>]]></content:encoded>
    </item>
    <item>
      <title>Second Post</title>
      <link>https://example.com/second</link>
      <description>Short summary</description>
    </item>
  </channel>
</rss>`

func newTestFetcher(interval time.Duration) *Fetcher {
	cfg := config.Default().HTTP
	cfg.UserAgent = "blogscraper-test"
	cfg.RequestInterval = interval
	return New(cfg, nil, logging.Discard())
}

func TestFetcherDocument(t *testing.T) {
	t.Parallel()

	agents := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Hello</h1></body></html>`))
	}))
	t.Cleanup(srv.Close)

	doc, err := newTestFetcher(0).Document(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "Hello", doc.Find("h1").Text())
	assert.Equal(t, "blogscraper-test", <-agents)
}

func TestFetcherUnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestFetcher(0).Document(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)

	_, err = newTestFetcher(0).Feed(context.Background(), srv.URL+"/feed")
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestFetcherFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testFeed))
	}))
	t.Cleanup(srv.Close)

	entries, err := newTestFetcher(0).Feed(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "https://example.com/first", first.URL)
	assert.Equal(t, "First Post", first.Title)
	assert.Equal(t, "Ada Lovelace", first.Author)
	assert.Equal(t, "<p>Full body</p>", first.ContentHTML)
	require.NotNil(t, first.PublishedDate)
	assert.Equal(t, time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC), *first.PublishedDate)

	second := entries[1]
	assert.Equal(t, "Short summary", second.ContentHTML)
	assert.Empty(t, second.Author)
	assert.Nil(t, second.PublishedDate)
}

func TestFetcherCanceledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html></html>`))
	}))
	t.Cleanup(srv.Close)

	f := newTestFetcher(time.Hour)
	_, err := f.Document(context.Background(), srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = f.Document(ctx, srv.URL)
	assert.Error(t, err)
}
