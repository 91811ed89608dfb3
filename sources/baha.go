package sources

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"news-forum-bot/models"

	"github.com/PuerkitoBio/goquery"
)

// BahaURL is the 巴哈姆特 GNN front page.
const BahaURL = "https://gnn.gamer.com.tw/"

// Baha scrapes GNN. Its article pages carry their own structure, so it does
// not use the generic ArticleFetcher.
type Baha struct {
	url      string
	client   *http.Client
	location *time.Location
	maxRunes int
}

// NewBaha creates a Baha source rooted at url.
func NewBaha(url string, client *http.Client, loc *time.Location, maxRunes int) *Baha {
	return &Baha{url: url, client: client, location: loc, maxRunes: maxRunes}
}

func (b *Baha) Name() string { return "baha" }

func (b *Baha) Fetch(ctx context.Context) ([]models.NewsItem, error) {
	doc, err := fetchDocument(ctx, b.client, b.url)
	if err != nil {
		return nil, err
	}

	var items []models.NewsItem
	doc.Find("div.GN-lbox2B").EachWithBreak(func(_ int, box *goquery.Selection) bool {
		if ctx.Err() != nil {
			return false
		}
		a := box.Find("h1.GN-lbox2D a").First()
		href, ok := a.Attr("href")
		title := strings.TrimSpace(a.Text())
		if !ok || title == "" {
			return true
		}
		link := absolute(b.url, href)

		item := models.NewsItem{Title: title, Link: link, Published: NoPublishedTime}
		if err := b.article(ctx, &item); err != nil {
			log.Printf("[sources] baha: %v", err)
		}
		items = append(items, item)
		return true
	})
	return items, ctx.Err()
}

// article fills published time, content and images from the article page.
func (b *Baha) article(ctx context.Context, item *models.NewsItem) error {
	doc, err := fetchDocument(ctx, b.client, item.Link)
	if err != nil {
		return err
	}

	if published := jsonLDDatePublished(doc); published != "" {
		item.Published = NormalizePublished(published, b.location)
	}
	item.Content = truncateRunes(strings.TrimSpace(doc.Find("div.GN-lbox3B").First().Text()), b.maxRunes)
	doc.Find("div.GN-lbox3C img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok && src != "" {
			item.Images = append(item.Images, absolute(b.url, src))
		}
	})
	return nil
}

// jsonLDDatePublished reads datePublished from the first JSON-LD block, which
// may be an object or a list of objects.
func jsonLDDatePublished(doc *goquery.Document) string {
	raw := doc.Find(`script[type="application/ld+json"]`).First().Text()
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	type ld struct {
		DatePublished string `json:"datePublished"`
	}
	var single ld
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		return single.DatePublished
	}
	var list []ld
	if err := json.Unmarshal([]byte(raw), &list); err == nil && len(list) > 0 {
		return list[0].DatePublished
	}
	return ""
}
