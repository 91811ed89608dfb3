package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"news-forum-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("CST", 8*3600)

func newSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

const articlePage = `<html><head>
<meta property="og:image" content="https://img.example.com/cover.jpg">
<meta property="og:image" content="https://img.example.com/favicon.ico">
</head><body>
<time class="caas-attr-meta-time">2024年1月10日 下午3:04</time>
<p> 第一段 </p><p></p><p>第二段</p>
</body></html>`

func TestArticleFetcher(t *testing.T) {
	server := newSite(t, map[string]string{
		"/article": articlePage,
		"/iso": `<html><body><time datetime="2024-01-10T07:04:00Z">x</time><p>內容</p></body></html>`,
		"/none": `<html><body><p>只有內容</p></body></html>`,
	})
	fetcher := NewArticleFetcher(server.Client(), taipei, 1000)
	ctx := context.Background()

	article, err := fetcher.Fetch(ctx, server.URL+"/article")
	require.NoError(t, err)
	assert.Equal(t, "2024年1月10日 下午3:04", article.Published)
	assert.Equal(t, "第一段\n第二段", article.Content)
	assert.Equal(t, []string{"https://img.example.com/cover.jpg"}, article.Images)

	article, err = fetcher.Fetch(ctx, server.URL+"/iso")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10 15:04:00", article.Published)

	article, err = fetcher.Fetch(ctx, server.URL+"/none")
	require.NoError(t, err)
	assert.Equal(t, NoPublishedTime, article.Published)

	article, err = fetcher.Fetch(ctx, server.URL+"/missing")
	assert.Error(t, err)
	assert.Equal(t, NoPublishedTime, article.Published)
	assert.Empty(t, article.Content)
}

func TestArticleFetcherTruncates(t *testing.T) {
	server := newSite(t, map[string]string{"/long": `<p>一二三四五六七八九十</p>`})
	fetcher := NewArticleFetcher(server.Client(), taipei, 4)

	article, err := fetcher.Fetch(context.Background(), server.URL+"/long")
	require.NoError(t, err)
	assert.Equal(t, "一二三四", article.Content)
}

func TestYahoo(t *testing.T) {
	front := `<html><body><ul>
<li class="_yb_1y70zwh _yb_su6olx"><a href="/hot-1"><div class="_yb_3cjtcc">熱門一</div></a></li>
<li class="_yb_1y70zwh _yb_su6olx"><a href="/empty"><div class="_yb_3cjtcc">沒有內文</div></a></li>
<li class="_yb_1y70zwh _yb_su6olx"><a href="/no-title"></a></li>
<li class="Pos(r) Lh(1.5) H(24px) Mb(8px)"><a href="/headline">頭條</a></li>
</ul></body></html>`
	server := newSite(t, map[string]string{
		"/":         front,
		"/hot-1":    articlePage,
		"/empty":    `<html><body><p></p></body></html>`,
		"/headline": articlePage,
	})
	articles := NewArticleFetcher(server.Client(), taipei, 1000)
	yahoo := NewYahoo(server.URL, server.Client(), articles)

	items, err := yahoo.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "熱門一", items[0].Title)
	assert.Equal(t, server.URL+"/hot-1", items[0].Link)
	assert.Equal(t, "第一段\n第二段", items[0].Content)
	assert.Equal(t, "頭條", items[1].Title)
}

func TestBaha(t *testing.T) {
	server := newSite(t, map[string]string{
		"/": `<div class="GN-lbox2B"><h1 class="GN-lbox2D"><a href="/detail">GNN 新聞</a></h1></div>
<div class="GN-lbox2B"><h1 class="GN-lbox2D"></h1></div>`,
		"/detail": `<html><head><script type="application/ld+json">[{"datePublished": "2024-01-10T15:04:00+08:00"}]</script></head>
<body><div class="GN-lbox3B"> 巴哈內文 </div><div class="GN-lbox3C"><img src="//p2.bahamut.com.tw/a.jpg"></div></body></html>`,
	})

	baha := NewBaha(server.URL+"/", server.Client(), taipei, 1000)
	items, err := baha.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.NewsItem{
		Title:     "GNN 新聞",
		Link:      server.URL + "/detail",
		Published: "2024-01-10 15:04:00",
		Content:   "巴哈內文",
		Images:    []string{"https://p2.bahamut.com.tw/a.jpg"},
	}, items[0])
}

func TestFourGamers(t *testing.T) {
	server := newSite(t, map[string]string{
		"/news": `<div><h4><a href="/news/detail/1">四個玩家</a></h4></div>
<div><h4><a href="/news/detail/2">空白</a></h4></div>`,
		"/news/detail/1": articlePage,
		"/news/detail/2": `<html></html>`,
	})
	articles := NewArticleFetcher(server.Client(), taipei, 1000)
	source := NewFourGamers(server.URL+"/news", server.Client(), articles)
	source.root = server.URL

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, server.URL+"/news/detail/1", items[0].Link)
}

func TestGoogleNews(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rss":
			w.Header().Set("Content-Type", "application/rss+xml")
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Google News</title>
<item><title>第一則</title><link>http://%[1]s/a</link><pubDate>Wed, 10 Jan 2024 07:04:00 GMT</pubDate>
<description>&lt;a href="x"&gt;摘要一&lt;/a&gt;</description></item>
<item><title>第二則</title><link>http://%[1]s/gone</link><pubDate>Wed, 10 Jan 2024 08:00:00 GMT</pubDate>
<description>&lt;p&gt;摘要二&lt;/p&gt;</description></item>
<item><title>第三則</title><link>http://%[1]s/a</link></item>
</channel></rss>`, r.Host)
		case "/a":
			fmt.Fprint(w, articlePage)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	articles := NewArticleFetcher(server.Client(), taipei, 1000)
	source := NewGoogleNews([]string{server.URL + "/rss", server.URL + "/broken"}, 2, server.Client(), articles, taipei)

	items, err := source.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "第一則", items[0].Title)
	assert.Equal(t, "2024-01-10 15:04:00", items[0].Published)
	assert.Equal(t, "第一段\n第二段", items[0].Content)

	assert.Equal(t, "第二則", items[1].Title)
	assert.Equal(t, "摘要二", items[1].Content, "falls back to the feed description")
	assert.Empty(t, items[1].Images)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "標題\n第一行\n第二行 & more",
		StripHTML(`<h1>標題</h1><p>第一行<br>第二行 &amp;   more</p><script>alert(1)</script>`))
	assert.Equal(t, "純文字", StripHTML("純文字"))
	assert.Empty(t, StripHTML(""))
}

func TestNormalizePublished(t *testing.T) {
	assert.Equal(t, "2024-01-10 15:04:00", NormalizePublished("2024-01-10T07:04:00Z", taipei))
	assert.Equal(t, "2024-01-10 15:04:00", NormalizePublished("2024-01-10T15:04:00+08:00", taipei))
	assert.Equal(t, "昨天", NormalizePublished("昨天", taipei))
}

type stubSource struct {
	name  string
	items []models.NewsItem
	err   error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Fetch(context.Context) ([]models.NewsItem, error) { return s.items, s.err }

func TestFetchAllSkipsFailingSources(t *testing.T) {
	items := FetchAll(context.Background(), []Source{
		stubSource{name: "a", items: []models.NewsItem{{Title: "1"}}},
		stubSource{name: "b", err: errors.New("down")},
		stubSource{name: "c", items: []models.NewsItem{{Title: "2"}, {Title: "3"}}},
	})
	var titles []string
	for _, item := range items {
		titles = append(titles, item.Title)
	}
	assert.Equal(t, []string{"1", "2", "3"}, titles)
}

func TestNew(t *testing.T) {
	sources, err := New([]string{"yahoo", " Google ", "baha", "4gamers"}, Options{})
	require.NoError(t, err)
	var names []string
	for _, s := range sources {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"yahoo", "google", "baha", "4gamers"}, names)

	_, err = New([]string{"yahoo", "nowhere"}, Options{})
	assert.Error(t, err)
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://a.com/x", absolute("https://a.com", "/x"))
	assert.Equal(t, "https://cdn.com/x", absolute("https://a.com", "//cdn.com/x"))
	assert.Equal(t, "http://b.com/x", absolute("https://a.com", "http://b.com/x"))
	assert.Equal(t, "https://a.com/x", absolute("https://a.com/", "x"))
}
