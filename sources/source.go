// Package sources scrapes candidate news items from the supported news sites
// and feeds.
package sources

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"news-forum-bot/models"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/89.0.4389.82 Safari/537.36"
	defaultTimeout   = 10 * time.Second
	defaultMaxRunes  = 1000
	defaultFeedLimit = 5
	// NoPublishedTime is used when an article has no recognizable time.
	NoPublishedTime = "無發布時間"
)

// Source produces candidate news items.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.NewsItem, error)
}

// Options configures the built-in sources.
type Options struct {
	Client          *http.Client
	Location        *time.Location
	MaxContentRunes int
	GoogleNewsFeeds []string
	LimitPerFeed    int
}

// OptionsFromConfig derives Options from the news config section.
func OptionsFromConfig(cfg models.NewsConfig, loc *time.Location) Options {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return Options{
		Client:          &http.Client{Timeout: timeout},
		Location:        loc,
		MaxContentRunes: cfg.MaxContentRunes,
		GoogleNewsFeeds: cfg.GoogleNewsFeeds,
		LimitPerFeed:    cfg.LimitPerFeed,
	}
}

func (o Options) withDefaults() Options {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: defaultTimeout}
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.MaxContentRunes <= 0 {
		o.MaxContentRunes = defaultMaxRunes
	}
	if o.LimitPerFeed <= 0 {
		o.LimitPerFeed = defaultFeedLimit
	}
	if len(o.GoogleNewsFeeds) == 0 {
		o.GoogleNewsFeeds = []string{GoogleNewsTaiwanFeed}
	}
	return o
}

// New builds the named sources in order. Unknown names are an error.
func New(names []string, opts Options) ([]Source, error) {
	opts = opts.withDefaults()
	articles := NewArticleFetcher(opts.Client, opts.Location, opts.MaxContentRunes)

	var out []Source
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "yahoo":
			out = append(out, NewYahoo(YahooURL, opts.Client, articles))
		case "baha":
			out = append(out, NewBaha(BahaURL, opts.Client, opts.Location, opts.MaxContentRunes))
		case "4gamers":
			out = append(out, NewFourGamers(FourGamersURL, opts.Client, articles))
		case "google":
			out = append(out, NewGoogleNews(opts.GoogleNewsFeeds, opts.LimitPerFeed, opts.Client, articles, opts.Location))
		default:
			return nil, fmt.Errorf("unknown news source %q", name)
		}
	}
	return out, nil
}

// FetchAll runs every source in order and concatenates their items. A failing
// source is logged and skipped.
func FetchAll(ctx context.Context, sources []Source) []models.NewsItem {
	var all []models.NewsItem
	for _, source := range sources {
		if ctx.Err() != nil {
			break
		}
		items, err := source.Fetch(ctx)
		if err != nil {
			log.Printf("[sources] %s failed: %v", source.Name(), err)
			continue
		}
		log.Printf("[sources] %s returned %d items", source.Name(), len(items))
		all = append(all, items...)
	}
	return all
}

// get performs a GET with the browser User-Agent and checks the status.
func get(ctx context.Context, client *http.Client, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to fetch %s: HTTP %d", url, resp.StatusCode)
	}
	return resp, nil
}

// absolute resolves a scraped href against a site root.
func absolute(root, href string) string {
	href = strings.TrimSpace(href)
	switch {
	case strings.HasPrefix(href, "https://"), strings.HasPrefix(href, "http://"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return strings.TrimRight(root, "/") + href
	default:
		return strings.TrimRight(root, "/") + "/" + href
	}
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
