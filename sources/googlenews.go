package sources

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"news-forum-bot/models"

	"github.com/mmcdole/gofeed"
)

// GoogleNewsTaiwanFeed is the Taiwan edition of Google News.
const GoogleNewsTaiwanFeed = "https://news.google.com/rss?hl=zh-TW&gl=TW&ceid=TW:zh-Hant"

// GoogleNews reads the newest entries of one or more RSS feeds.
type GoogleNews struct {
	feeds    []string
	limit    int
	parser   *gofeed.Parser
	articles *ArticleFetcher
	location *time.Location
}

// NewGoogleNews creates a feed source reading at most limit entries per feed.
func NewGoogleNews(feeds []string, limit int, client *http.Client, articles *ArticleFetcher, loc *time.Location) *GoogleNews {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = userAgent
	return &GoogleNews{feeds: feeds, limit: limit, parser: parser, articles: articles, location: loc}
}

func (g *GoogleNews) Name() string { return "google" }

func (g *GoogleNews) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	var items []models.NewsItem
	for _, url := range g.feeds {
		feed, err := g.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			log.Printf("[sources] google: failed to parse feed %s: %v", url, err)
			continue
		}

		entries := feed.Items
		if len(entries) > g.limit {
			entries = entries[:g.limit]
		}
		for _, entry := range entries {
			if ctx.Err() != nil {
				return items, ctx.Err()
			}
			items = append(items, g.item(ctx, entry))
		}
		log.Printf("[sources] google: %d entries from %s", len(entries), url)
	}
	return items, nil
}

func (g *GoogleNews) item(ctx context.Context, entry *gofeed.Item) models.NewsItem {
	item := models.NewsItem{
		Title:     strings.TrimSpace(entry.Title),
		Link:      strings.TrimSpace(entry.Link),
		Published: NoPublishedTime,
	}
	switch {
	case entry.PublishedParsed != nil:
		item.Published = entry.PublishedParsed.In(g.location).Format(time.DateTime)
	case entry.Published != "":
		item.Published = NormalizePublished(entry.Published, g.location)
	}

	article, err := g.articles.Fetch(ctx, item.Link)
	if err != nil {
		log.Printf("[sources] google: %v", err)
	}
	item.Content = article.Content
	item.Images = article.Images
	if item.Content == "" {
		item.Content = truncateRunes(StripHTML(entry.Description), g.articles.maxRunes)
	}
	if item.Published == NoPublishedTime && article.Published != "" {
		item.Published = article.Published
	}
	return item
}
