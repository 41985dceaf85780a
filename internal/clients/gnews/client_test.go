package gnews

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>"2330 台積電 法說" - Google 新聞</title>
<item>
<title>台積電法說會釋出樂觀展望</title>
<link>https://news.google.com/rss/articles/abc123</link>
<pubDate>Fri, 30 Jan 2026 08:00:00 GMT</pubDate>
</item>
<item>
<title></title>
<link>https://news.google.com/rss/articles/notitle</link>
<pubDate>Fri, 30 Jan 2026 07:00:00 GMT</pubDate>
</item>
<item>
<title>無連結的項目</title>
<link></link>
</item>
<item>
<title>第二則有效新聞</title>
<link>https://news.google.com/rss/articles/def456</link>
<pubDate>Thu, 29 Jan 2026 12:00:00 GMT</pubDate>
</item>
</channel>
</rss>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(WithBaseURL(server.URL), WithRateLimit(1000))
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rss/search", r.URL.Path)
		assert.Equal(t, "2330 台積電 法說", r.URL.Query().Get("q"))
		assert.Equal(t, "zh-TW", r.URL.Query().Get("hl"))
		assert.Equal(t, "TW", r.URL.Query().Get("gl"))
		assert.Equal(t, "TW:zh-Hant", r.URL.Query().Get("ceid"))
		w.Write([]byte(sampleFeed))
	})

	items, err := client.Search(context.Background(), "2330 台積電 法說", 10)
	require.NoError(t, err)

	// Items without a title or a link are dropped.
	require.Len(t, items, 2)
	assert.Equal(t, "台積電法說會釋出樂觀展望", items[0].Title)
	assert.Equal(t, "https://news.google.com/rss/articles/abc123", items[0].Link)
	assert.Equal(t, "Fri, 30 Jan 2026 08:00:00 GMT", items[0].Date)
	assert.Equal(t, "第二則有效新聞", items[1].Title)
}

func TestSearchLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0"?><rss><channel>`)
		for i := 0; i < 20; i++ {
			fmt.Fprintf(w, `<item><title>新聞 %d</title><link>https://example.com/%d</link></item>`, i, i)
		}
		fmt.Fprint(w, `</channel></rss>`)
	})

	items, err := client.Search(context.Background(), "2330", 10)
	require.NoError(t, err)
	assert.Len(t, items, 10)
}

func TestSearchWrappedFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("junk before " + sampleFeed + " junk after"))
	})

	items, err := client.Search(context.Background(), "2330", 10)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSearchEmptyChannel(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<?xml version="1.0"?><rss><channel><title>empty</title></channel></rss>`))
	})

	items, err := client.Search(context.Background(), "0000", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSearchMalformedFeed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<rss><channel><item><title>broken`))
	})

	_, err := client.Search(context.Background(), "2330", 10)
	require.Error(t, err)
}
