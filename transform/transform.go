// Package transform rewrites fresh news items before publication. Every step
// falls back to a safe default when the underlying model fails.
package transform

import (
	"context"
	"log"
	"strings"

	"news-forum-bot/models"
)

// DefaultComment is the commentary used when none can be generated.
const DefaultComment = "不予置評"

// Transformer is the language model behind the rewrite steps.
type Transformer interface {
	CleanContent(ctx context.Context, content string) (string, error)
	RewriteTitle(ctx context.Context, title, content string) (string, error)
	RewriteContent(ctx context.Context, content string) (string, error)
	Commentary(ctx context.Context, title, content string) (string, error)
	SelectTags(ctx context.Context, available []string, content string) ([]string, error)
}

// Processor applies a Transformer to news items.
type Processor struct {
	transformer Transformer
}

// NewProcessor creates a Processor.
func NewProcessor(t Transformer) *Processor {
	return &Processor{transformer: t}
}

// Process rewrites one item: clean content, new title, new content, then
// commentary over the rewritten title and content. The input is not modified.
func (p *Processor) Process(ctx context.Context, item models.NewsItem) models.NewsItem {
	out := item
	out.Images = append([]string(nil), item.Images...)

	out.Content = p.orDefault("CleanContent", item.Content, func() (string, error) {
		return p.transformer.CleanContent(ctx, item.Content)
	})
	out.Title = p.orDefault("RewriteTitle", item.Title, func() (string, error) {
		return p.transformer.RewriteTitle(ctx, item.Title, out.Content)
	})
	cleaned := out.Content
	out.Content = p.orDefault("RewriteContent", cleaned, func() (string, error) {
		return p.transformer.RewriteContent(ctx, cleaned)
	})
	out.Comment = p.orDefault("Commentary", DefaultComment, func() (string, error) {
		return p.transformer.Commentary(ctx, out.Title, out.Content)
	})
	return out
}

// ProcessAll rewrites items in order. It stops early when ctx is cancelled
// and returns what has been processed so far.
func (p *Processor) ProcessAll(ctx context.Context, items []models.NewsItem) []models.NewsItem {
	out := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if ctx.Err() != nil {
			log.Printf("[transform] cancelled after %d of %d items", len(out), len(items))
			break
		}
		out = append(out, p.Process(ctx, item))
	}
	return out
}

// Tags selects tag names for content. Failures yield no tags.
func (p *Processor) Tags(ctx context.Context, available []string, content string) []string {
	if len(available) == 0 {
		return nil
	}
	tags, err := p.transformer.SelectTags(ctx, available, content)
	if err != nil {
		log.Printf("[transform] SelectTags failed: %v", err)
		return nil
	}
	return tags
}

func (p *Processor) orDefault(step, fallback string, call func() (string, error)) string {
	result, err := call()
	if err != nil {
		log.Printf("[transform] %s failed, using fallback: %v", step, err)
		return fallback
	}
	if strings.TrimSpace(result) == "" {
		return fallback
	}
	return strings.TrimSpace(result)
}
