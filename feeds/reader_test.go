package feeds_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varsler/feeds"
)

const rssTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Example News</title>
<link>https://example.com</link>
%s
</channel>
</rss>`

func serveRSS(t *testing.T, itemsXML string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, rssTemplate, itemsXML)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchNormalizesEntries(t *testing.T) {
	srv := serveRSS(t, `
<item>
  <guid>urn:example:1</guid>
  <title>AI breakthrough</title>
  <link>https://example.com/articles/1</link>
  <description>A short summary</description>
  <category>tech</category>
  <pubDate>Mon, 02 Jun 2025 15:04:05 GMT</pubDate>
</item>`)

	reader := feeds.NewReader()
	items, err := reader.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "urn:example:1", item.Id)
	assert.Equal(t, "AI breakthrough", item.Title)
	assert.Equal(t, "https://example.com/articles/1", item.Link)
	assert.Equal(t, "A short summary", item.Summary)
	assert.Equal(t, "Example News", item.Source)
	assert.Equal(t, "tech", item.Category)
	require.NotNil(t, item.Published)
	assert.Equal(t, 2025, item.Published.Year())
}

func TestFetchIdentityDerivation(t *testing.T) {
	srv := serveRSS(t, `
<item>
  <guid>urn:example:guid</guid>
  <title>Has guid</title>
  <link>https://example.com/articles/guid</link>
</item>
<item>
  <title>Only link</title>
  <link>https://example.com/articles/link-only</link>
</item>
<item>
  <title>Neither guid nor link</title>
</item>`)

	reader := feeds.NewReader()
	items, err := reader.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "urn:example:guid", items[0].Id)
	assert.Equal(t, "https://example.com/articles/link-only", items[1].Id)
	// Malformed entries still get a non-empty generated id
	assert.NotEmpty(t, items[2].Id)
}

func TestFetchTruncatesTitle(t *testing.T) {
	longTitle := strings.Repeat("å", feeds.MaxTitleLength+100)
	srv := serveRSS(t, fmt.Sprintf(`
<item>
  <guid>urn:example:long</guid>
  <title>%s</title>
</item>`, longTitle))

	reader := feeds.NewReader()
	items, err := reader.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, feeds.MaxTitleLength, len([]rune(items[0].Title)))
}

func TestFetchDefaultsCategoryToSentinel(t *testing.T) {
	srv := serveRSS(t, `
<item>
  <guid>urn:example:nocat</guid>
  <title>No category</title>
</item>`)

	reader := feeds.NewReader()
	items, err := reader.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, items, 1)

	assert.Equal(t, "uncategorized", items[0].Category)
}

func TestFetchUnparseableFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not a feed")
	}))
	t.Cleanup(srv.Close)

	reader := feeds.NewReader()
	_, err := reader.Fetch(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestFetchConcurrentSharedReader(t *testing.T) {
	rss := serveRSS(t, `
<item>
  <guid>urn:example:rss</guid>
  <title>From RSS</title>
</item>`)

	atom := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Example Atom</title>
  <entry>
    <id>urn:example:atom</id>
    <title>From Atom</title>
  </entry>
</feed>`)
	}))
	t.Cleanup(atom.Close)

	reader := feeds.NewReader()

	// The scheduled loop and the manual fetch trigger share one Reader, so
	// fetches of different feed formats must be safe in parallel.
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		url := rss.URL
		if i%2 == 1 {
			url = atom.URL
		}
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			items, err := reader.Fetch(context.Background(), url)
			assert.NoError(t, err)
			assert.Len(t, items, 1)
		}(url)
	}
	wg.Wait()
}

func TestFetchAllIsolatesFailingSources(t *testing.T) {
	good := serveRSS(t, `
<item>
  <guid>urn:example:ok</guid>
  <title>Still delivered</title>
</item>`)

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(broken.Close)

	reader := feeds.NewReader()
	items := reader.FetchAll(context.Background(), []string{broken.URL, good.URL, "http://127.0.0.1:1/unreachable"})

	require.Len(t, items, 1)
	assert.Equal(t, "urn:example:ok", items[0].Id)
}
