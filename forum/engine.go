package forum

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"news-forum-bot/models"
	"news-forum-bot/similarity"
	"news-forum-bot/utils"
)

const (
	// SourceLinkMarker prefixes the original article link.
	SourceLinkMarker = "原文："
	// AutoArchiveMinutes is the auto-archive duration of created threads.
	AutoArchiveMinutes = 24 * 60
	// IdleThreadAge is how long a thread without members may stay silent.
	IdleThreadAge = 24 * time.Hour
	// maxAppliedTags is the platform limit of tags per thread.
	maxAppliedTags = 5
)

// Result summarizes one Publish call.
type Result struct {
	Updated   int
	Created   int
	Reclaimed int
	Failures  int
	// Stale lists channels that could not be resolved and must be
	// deregistered by the caller.
	Stale []ChannelRef
}

// Engine publishes transformed news items into forum channels.
//
// A thread that has already absorbed an item during a run is not offered to
// later items of the same run: the first matching item wins and later
// matches fall through to other similar threads or to a new thread.
type Engine struct {
	backend    Backend
	similarity *similarity.Engine
	tags       TagSelector
	recorder   Recorder
	threshold  float64
}

// NewEngine creates a publication engine.
func NewEngine(backend Backend, sim *similarity.Engine, tags TagSelector, threshold float64) *Engine {
	return &Engine{
		backend:    backend,
		similarity: sim,
		tags:       tags,
		threshold:  threshold,
	}
}

// SetRecorder attaches a publication ledger.
func (e *Engine) SetRecorder(recorder Recorder) {
	e.recorder = recorder
}

// Publish reconciles items with every channel in order. Channels are
// independent: each starts from the full item list. Embeddings are cached for
// the duration of one call.
func (e *Engine) Publish(ctx context.Context, channels []ChannelRef, items []models.NewsItem, now time.Time) Result {
	var result Result
	e.similarity.Reset()
	if len(channels) == 0 {
		log.Println("[forum] no forum channels registered, nothing to publish")
		return result
	}

	for _, ref := range channels {
		if err := ctx.Err(); err != nil {
			log.Printf("[forum] publication cancelled: %v", err)
			result.Failures++
			break
		}
		e.publishChannel(ctx, ref, items, now, &result)
	}
	return result
}

func (e *Engine) publishChannel(ctx context.Context, ref ChannelRef, items []models.NewsItem, now time.Time, result *Result) {
	channel, err := e.backend.Channel(ctx, ref.ChannelID)
	if err != nil {
		if errors.Is(err, ErrChannelNotFound) {
			utils.Warn("ForumEngine", "ResolveChannel", fmt.Sprintf("頻道 %s (guild %s) 已不存在，將從列表移除", ref.ChannelID, ref.GuildID))
			result.Stale = append(result.Stale, ref)
			return
		}
		log.Printf("[forum] failed to resolve channel %s: %v", ref.ChannelID, err)
		result.Failures++
		return
	}
	if channel.GuildID == "" {
		channel.GuildID = ref.GuildID
	}

	threads, err := e.backend.Threads(ctx, channel, MaxThreads)
	if err != nil {
		log.Printf("[forum] failed to list threads of channel %s: %v", channel.ID, err)
		result.Failures++
		return
	}
	live := e.reclaim(ctx, threads, now, result)

	pending := slices.Clone(items)
	pending = e.updateMatching(ctx, channel, live, pending, now, result)

	for _, item := range pending {
		if err := ctx.Err(); err != nil {
			result.Failures++
			return
		}
		if err := e.createThread(ctx, channel, item, now); err != nil {
			log.Printf("[forum] failed to create thread %q in channel %s: %v", item.Title, channel.ID, err)
			result.Failures++
			continue
		}
		result.Created++
	}

	log.Printf("[forum] channel %s (%s): %d live threads, %d new threads", channel.Name, channel.ID, len(live), len(pending))
}

// Abandoned reports whether a thread should be deleted instead of reused:
// it is archived, or it has at most one member and has been idle for more
// than IdleThreadAge.
func Abandoned(thread Thread, now time.Time) bool {
	if thread.Archived {
		return true
	}
	lastActivity := thread.LastMessageAt
	if lastActivity.IsZero() {
		lastActivity = thread.CreatedAt
	}
	return thread.MemberCount <= 1 && now.Sub(lastActivity) > IdleThreadAge
}

// reclaim deletes abandoned threads and returns the rest.
func (e *Engine) reclaim(ctx context.Context, threads []Thread, now time.Time, result *Result) []Thread {
	live := make([]Thread, 0, len(threads))
	for _, thread := range threads {
		if !Abandoned(thread, now) {
			live = append(live, thread)
			continue
		}
		if err := e.backend.DeleteThread(ctx, thread.ID); err != nil {
			log.Printf("[forum] failed to delete abandoned thread %s (%s): %v", thread.Name, thread.ID, err)
			result.Failures++
			continue
		}
		log.Printf("[forum] deleted abandoned thread %s (%s)", thread.Name, thread.ID)
		result.Reclaimed++
	}
	return live
}

// updateMatching appends every pending item to the live threads it is
// similar to and returns the items that matched nothing.
func (e *Engine) updateMatching(ctx context.Context, channel *Channel, live []Thread, pending []models.NewsItem, now time.Time, result *Result) []models.NewsItem {
	claimed := make(map[string]bool, len(live))
	remaining := pending[:0]

	for _, item := range pending {
		if ctx.Err() != nil {
			remaining = append(remaining, item)
			continue
		}
		if len(item.Embedding) == 0 {
			item.Embedding = e.similarity.Embed(ctx, item.Title)
		}

		var matches []Thread
		for _, thread := range live {
			if claimed[thread.ID] {
				continue
			}
			threadEmbedding := e.similarity.Embed(ctx, thread.Name)
			if similarity.IsSimilar(item.Embedding, threadEmbedding, e.threshold) {
				matches = append(matches, thread)
			}
		}

		if len(matches) == 0 {
			remaining = append(remaining, item)
			continue
		}

		for _, thread := range matches {
			claimed[thread.ID] = true
			if err := e.updateThread(ctx, thread, item); err != nil {
				log.Printf("[forum] failed to update thread %s with %q: %v", thread.ID, item.Title, err)
				result.Failures++
				continue
			}
			e.record(channel, thread.ID, item, models.ActionUpdate, now)
			result.Updated++
		}
	}
	return remaining
}

// updateThread renames the thread to the item title and appends the item.
func (e *Engine) updateThread(ctx context.Context, thread Thread, item models.NewsItem) error {
	if err := e.backend.RenameThread(ctx, thread.ID, item.Title); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	messages := []string{item.Comment, item.Published}
	messages = append(messages, item.Images...)
	messages = append(messages, item.Content, SourceLinkMarker+item.Link)
	return e.sendAll(ctx, thread.ID, messages)
}

// createThread opens a new thread for the item with the selected tags.
func (e *Engine) createThread(ctx context.Context, channel *Channel, item models.NewsItem, now time.Time) error {
	names := e.tags.Tags(ctx, channel.TagNames(), item.Content)
	tagIDs := ResolveTags(channel.AvailableTags, names)

	firstImage := " "
	if len(item.Images) > 0 {
		firstImage = item.Images[0]
	}

	thread, err := e.backend.CreateThread(ctx, channel.ID, NewThread{
		Name:               item.Title,
		Content:            item.Comment + "\n" + firstImage,
		TagIDs:             tagIDs,
		AutoArchiveMinutes: AutoArchiveMinutes,
	})
	if err != nil {
		return err
	}
	e.record(channel, thread.ID, item, models.ActionCreate, now)

	messages := []string{item.Published}
	if len(item.Images) > 1 {
		messages = append(messages, item.Images[1:]...)
	}
	messages = append(messages, item.Content, SourceLinkMarker+item.Link)
	return e.sendAll(ctx, thread.ID, messages)
}

func (e *Engine) sendAll(ctx context.Context, threadID string, messages []string) error {
	for _, message := range messages {
		if err := e.backend.Send(ctx, threadID, message); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
	return nil
}

func (e *Engine) record(channel *Channel, threadID string, item models.NewsItem, action string, now time.Time) {
	if e.recorder == nil {
		return
	}
	err := e.recorder.RecordPublication(models.Publication{
		ThreadID:  threadID,
		ChannelID: channel.ID,
		GuildID:   channel.GuildID,
		Title:     item.Title,
		Link:      item.Link,
		Action:    action,
		Timestamp: now.Unix(),
	})
	if err != nil {
		log.Printf("[forum] failed to record %s of thread %s: %v", action, threadID, err)
	}
}

// ResolveTags maps selected tag names to IDs of tags that already exist on
// the channel, in the channel's tag order. Unknown names are ignored.
func ResolveTags(available []Tag, names []string) []string {
	var ids []string
	for _, tag := range available {
		if len(ids) == maxAppliedTags {
			break
		}
		if slices.Contains(names, tag.Name) {
			ids = append(ids, tag.ID)
		}
	}
	return ids
}
