package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Article is what can be scraped from a single news page.
type Article struct {
	Published string
	Content   string
	Images    []string
}

// ArticleFetcher scrapes generic news pages.
type ArticleFetcher struct {
	client   *http.Client
	location *time.Location
	maxRunes int
}

// NewArticleFetcher creates an ArticleFetcher.
func NewArticleFetcher(client *http.Client, loc *time.Location, maxRunes int) *ArticleFetcher {
	return &ArticleFetcher{client: client, location: loc, maxRunes: maxRunes}
}

// Fetch scrapes url. On failure it returns an empty Article with
// NoPublishedTime and the error.
func (f *ArticleFetcher) Fetch(ctx context.Context, url string) (Article, error) {
	doc, err := fetchDocument(ctx, f.client, url)
	if err != nil {
		return Article{Published: NoPublishedTime}, err
	}
	return f.parse(doc), nil
}

func (f *ArticleFetcher) parse(doc *goquery.Document) Article {
	var paragraphs []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})

	article := Article{
		Published: f.published(doc),
		Content:   truncateRunes(strings.Join(paragraphs, "\n"), f.maxRunes),
	}

	doc.Find(`meta[property="og:image"]`).Each(func(_ int, s *goquery.Selection) {
		src, ok := s.Attr("content")
		if !ok || src == "" || strings.HasSuffix(src, ".ico") {
			return
		}
		article.Images = append(article.Images, src)
	})
	return article
}

// published prefers the Yahoo byline time, then the first <time datetime>.
func (f *ArticleFetcher) published(doc *goquery.Document) string {
	if text := strings.TrimSpace(doc.Find("time.caas-attr-meta-time").First().Text()); text != "" {
		return text
	}
	if datetime, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok && strings.TrimSpace(datetime) != "" {
		return NormalizePublished(datetime, f.location)
	}
	return NoPublishedTime
}

// NormalizePublished converts a machine readable timestamp into
// "2006-01-02 15:04:05" in loc. Unrecognized values are returned unchanged.
func NormalizePublished(value string, loc *time.Location) string {
	value = strings.TrimSpace(value)
	t, err := dateparse.ParseIn(value, loc)
	if err != nil {
		log.Printf("[sources] unrecognized published time %q: %v", value, err)
		return value
	}
	return t.In(loc).Format(time.DateTime)
}

func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	resp, err := get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML of %s: %w", url, err)
	}
	return doc, nil
}
