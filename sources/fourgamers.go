package sources

import (
	"context"
	"log"
	"net/http"
	"strings"

	"news-forum-bot/models"

	"github.com/PuerkitoBio/goquery"
)

// FourGamersURL is the 4Gamers news index.
const FourGamersURL = "https://www.4gamers.com.tw/news"

const fourGamersRoot = "https://www.4gamers.com.tw"

// FourGamers scrapes the 4Gamers news index.
type FourGamers struct {
	url      string
	root     string
	client   *http.Client
	articles *ArticleFetcher
}

// NewFourGamers creates a 4Gamers source for the index at url.
func NewFourGamers(url string, client *http.Client, articles *ArticleFetcher) *FourGamers {
	return &FourGamers{url: url, root: fourGamersRoot, client: client, articles: articles}
}

func (g *FourGamers) Name() string { return "4gamers" }

func (g *FourGamers) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	doc, err := fetchDocument(ctx, g.client, g.url)
	if err != nil {
		return nil, err
	}

	var items []models.NewsItem
	doc.Find("div h4 a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		title := strings.TrimSpace(a.Text())
		href, ok := a.Attr("href")
		if title == "" || !ok {
			return true
		}
		link := absolute(g.root, href)

		article, err := g.articles.Fetch(ctx, link)
		if err != nil {
			log.Printf("[sources] 4gamers: %v", err)
			return true
		}
		if article.Content == "" {
			return true
		}
		items = append(items, models.NewsItem{
			Title:     title,
			Link:      link,
			Published: article.Published,
			Content:   article.Content,
			Images:    article.Images,
		})
		return true
	})
	return items, ctx.Err()
}
