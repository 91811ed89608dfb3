package sources

import (
	"context"
	"log"
	"net/http"
	"strings"

	"news-forum-bot/models"

	"github.com/PuerkitoBio/goquery"
)

// YahooURL is the Yahoo奇摩新聞 front page.
const YahooURL = "https://tw.news.yahoo.com"

const (
	yahooHotSelector      = "li._yb_1y70zwh._yb_su6olx a"
	yahooHotTitleSelector = "div._yb_3cjtcc"
	yahooHeadlineSelector = `li.Pos\(r\).Lh\(1\.5\).H\(24px\).Mb\(8px\)`
)

// Yahoo scrapes the hot list and the headline list of the front page.
type Yahoo struct {
	url      string
	client   *http.Client
	articles *ArticleFetcher
}

// NewYahoo creates a Yahoo source rooted at url.
func NewYahoo(url string, client *http.Client, articles *ArticleFetcher) *Yahoo {
	return &Yahoo{url: url, client: client, articles: articles}
}

func (y *Yahoo) Name() string { return "yahoo" }

func (y *Yahoo) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	doc, err := fetchDocument(ctx, y.client, y.url)
	if err != nil {
		return nil, err
	}

	type entry struct{ title, link string }
	var entries []entry

	doc.Find(yahooHotSelector).Each(func(_ int, a *goquery.Selection) {
		title := strings.TrimSpace(a.Find(yahooHotTitleSelector).First().Text())
		href, ok := a.Attr("href")
		if title == "" || !ok {
			return
		}
		entries = append(entries, entry{title, absolute(y.url, href)})
	})
	doc.Find(yahooHeadlineSelector).Each(func(_ int, li *goquery.Selection) {
		a := li.Find("a[href]").First()
		href, ok := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if title == "" || !ok {
			return
		}
		entries = append(entries, entry{title, absolute(y.url, href)})
	})

	var items []models.NewsItem
	for _, e := range entries {
		if ctx.Err() != nil {
			return items, ctx.Err()
		}
		article, err := y.articles.Fetch(ctx, e.link)
		if err != nil {
			log.Printf("[sources] yahoo: %v", err)
			continue
		}
		if article.Content == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title:     e.title,
			Link:      e.link,
			Published: article.Published,
			Content:   article.Content,
			Images:    article.Images,
		})
	}
	return items, nil
}
