package forum

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	maxThreadNameRunes  = 100
	maxMessageRunes     = 2000
	emptyMessageContent = "\u200b"
)

// DiscordBackend implements Backend on top of a discordgo session.
type DiscordBackend struct {
	session *discordgo.Session
}

// NewDiscordBackend wraps an open session.
func NewDiscordBackend(s *discordgo.Session) *DiscordBackend {
	return &DiscordBackend{session: s}
}

// Channel resolves a forum channel and its available tags.
func (d *DiscordBackend) Channel(ctx context.Context, channelID string) (*Channel, error) {
	ch, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
		}
		return nil, fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	if ch.Type != discordgo.ChannelTypeGuildForum {
		return nil, fmt.Errorf("%w: %s is not a forum channel", ErrChannelNotFound, channelID)
	}

	channel := &Channel{ID: ch.ID, GuildID: ch.GuildID, Name: ch.Name}
	for _, tag := range ch.AvailableTags {
		channel.AvailableTags = append(channel.AvailableTags, Tag{ID: tag.ID, Name: tag.Name})
	}
	return channel, nil
}

// Threads returns the channel's active threads, newest first, capped at
// limit. Archived threads are history and never enumerated.
func (d *DiscordBackend) Threads(ctx context.Context, channel *Channel, limit int) ([]Thread, error) {
	active, err := d.session.GuildThreadsActive(channel.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get active threads for guild %s: %w", channel.GuildID, err)
	}

	var threads []Thread
	seen := make(map[string]bool)
	for _, th := range active.Threads {
		if th.ParentID != channel.ID || seen[th.ID] {
			continue
		}
		seen[th.ID] = true
		threads = append(threads, toThread(th))
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})

	if len(threads) > limit {
		threads = threads[:limit]
	}
	return threads, nil
}

// DeleteThread deletes a thread. An already deleted thread is not an error.
func (d *DiscordBackend) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := d.session.ChannelDelete(threadID, discordgo.WithContext(ctx)); err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete thread %s: %w", threadID, err)
	}
	return nil
}

// RenameThread sets the thread name.
func (d *DiscordBackend) RenameThread(ctx context.Context, threadID, name string) error {
	_, err := d.session.ChannelEdit(threadID, &discordgo.ChannelEdit{
		Name: truncateRunes(name, maxThreadNameRunes),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to rename thread %s: %w", threadID, err)
	}
	return nil
}

// Send posts content to the thread, split into several messages when it
// exceeds the message length limit.
func (d *DiscordBackend) Send(ctx context.Context, threadID, content string) error {
	for _, chunk := range SplitMessage(content, maxMessageRunes) {
		if _, err := d.session.ChannelMessageSend(threadID, chunk, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to send message to thread %s: %w", threadID, err)
		}
	}
	return nil
}

// CreateThread starts a forum post.
func (d *DiscordBackend) CreateThread(ctx context.Context, channelID string, thread NewThread) (*Thread, error) {
	content := SplitMessage(thread.Content, maxMessageRunes)
	th, err := d.session.ForumThreadStartComplex(channelID, &discordgo.ThreadStart{
		Name:                truncateRunes(thread.Name, maxThreadNameRunes),
		AutoArchiveDuration: thread.AutoArchiveMinutes,
		AppliedTags:         thread.TagIDs,
	}, &discordgo.MessageSend{
		Content: content[0],
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to create thread in channel %s: %w", channelID, err)
	}

	for _, chunk := range content[1:] {
		if _, err := d.session.ChannelMessageSend(th.ID, chunk, discordgo.WithContext(ctx)); err != nil {
			return nil, fmt.Errorf("failed to send message to thread %s: %w", th.ID, err)
		}
	}

	created := toThread(th)
	return &created, nil
}

// toThread converts a discordgo thread channel.
func toThread(th *discordgo.Channel) Thread {
	// A thread's ID is the snowflake of its creation.
	createdAt, err := discordgo.SnowflakeTimestamp(th.ID)
	if err != nil {
		createdAt = time.Now()
	}

	lastMessageAt := createdAt
	if th.LastMessageID != "" {
		if ts, err := discordgo.SnowflakeTimestamp(th.LastMessageID); err == nil {
			lastMessageAt = ts
		}
	}

	thread := Thread{
		ID:            th.ID,
		Name:          th.Name,
		CreatedAt:     createdAt,
		LastMessageAt: lastMessageAt,
		MemberCount:   th.MemberCount,
		AppliedTags:   th.AppliedTags,
	}
	if th.ThreadMetadata != nil {
		thread.Archived = th.ThreadMetadata.Archived
	}
	return thread
}

// isNotFound reports whether a REST error means the resource is gone.
func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownChannel {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// SplitMessage cuts content into chunks of at most limit runes, preferring
// line breaks. Blank content becomes a single zero-width message because the
// platform rejects empty messages.
func SplitMessage(content string, limit int) []string {
	if strings.TrimSpace(content) == "" {
		return []string{emptyMessageContent}
	}

	var chunks []string
	runes := []rune(content)
	for len(runes) > limit {
		cut := limit
		for i := limit; i > limit/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		chunks = append(chunks, string(runes[:cut]))
		runes = runes[cut:]
	}
	if strings.TrimSpace(string(runes)) != "" {
		chunks = append(chunks, string(runes))
	}
	return chunks
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
