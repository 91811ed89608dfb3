// Package memory keeps the title-keyed ledger of news items that were already
// ingested, with a rolling retention window.
package memory

import (
	"strings"
	"time"

	"news-forum-bot/models"
)

// publishedLayouts are tried in order; the first successful parse wins.
// The first layout expects 上午/下午 to have been replaced with AM/PM.
var publishedLayouts = []string{
	"2006年1月2日 PM3:04",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
}

var meridiemReplacer = strings.NewReplacer("下午", "PM", "上午", "AM")

// ParsePublished parses a published string in any supported format, in loc.
// It reports false when no format matches.
func ParsePublished(published string, loc *time.Location) (time.Time, bool) {
	value := meridiemReplacer.Replace(strings.TrimSpace(published))
	for _, layout := range publishedLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterNew returns the candidates whose title does not exactly match any
// remembered title. Candidate order is preserved and memory is not modified.
func FilterNew(candidates []models.NewsItem, memory []models.MemoryRecord) []models.NewsItem {
	seen := make(map[string]struct{}, len(memory))
	for _, record := range memory {
		seen[record.Title] = struct{}{}
	}

	fresh := make([]models.NewsItem, 0, len(candidates))
	for _, item := range candidates {
		if _, ok := seen[item.Title]; ok {
			continue
		}
		fresh = append(fresh, item)
	}
	return fresh
}

// ExtendAndPrune appends newItems to memory and then drops every record
// published before now minus retentionDays. Records whose published value
// cannot be parsed count as published now and are kept.
func ExtendAndPrune(memory []models.MemoryRecord, newItems []models.NewsItem, retentionDays int, now time.Time) []models.MemoryRecord {
	cutoff := now.AddDate(0, 0, -retentionDays)

	extended := make([]models.MemoryRecord, 0, len(memory)+len(newItems))
	extended = append(extended, memory...)
	for _, item := range newItems {
		extended = append(extended, item.Record())
	}

	kept := extended[:0]
	for _, record := range extended {
		published, ok := ParsePublished(record.Published, now.Location())
		if !ok {
			published = now
		}
		if published.Before(cutoff) {
			continue
		}
		kept = append(kept, record)
	}
	return kept
}
