// Package forum reconciles transformed news items with the threads of forum
// channels: stale threads are reclaimed, matching threads are updated in
// place and everything else becomes a new thread.
package forum

import (
	"context"
	"errors"
	"time"

	"news-forum-bot/models"
)

// ErrChannelNotFound is returned by Backend.Channel when the channel no
// longer exists or is not a forum channel.
var ErrChannelNotFound = errors.New("forum channel not found")

// MaxThreads bounds how many recent threads are considered per channel.
const MaxThreads = 100

// Channel is a forum channel as seen by the engine.
type Channel struct {
	ID            string
	GuildID       string
	Name          string
	AvailableTags []Tag
}

// TagNames returns the names of the channel's available tags, in order.
func (c *Channel) TagNames() []string {
	names := make([]string, 0, len(c.AvailableTags))
	for _, tag := range c.AvailableTags {
		names = append(names, tag.Name)
	}
	return names
}

// Tag is a forum tag.
type Tag struct {
	ID   string
	Name string
}

// Thread is a live post in a forum channel.
type Thread struct {
	ID            string
	Name          string
	CreatedAt     time.Time
	LastMessageAt time.Time
	Archived      bool
	MemberCount   int
	AppliedTags   []string
}

// NewThread describes a thread to be created.
type NewThread struct {
	Name               string
	Content            string
	TagIDs             []string
	AutoArchiveMinutes int
}

// Backend is the subset of the chat platform the engine needs.
type Backend interface {
	Channel(ctx context.Context, channelID string) (*Channel, error)
	// Threads returns at most limit of the channel's most recent threads.
	Threads(ctx context.Context, channel *Channel, limit int) ([]Thread, error)
	DeleteThread(ctx context.Context, threadID string) error
	RenameThread(ctx context.Context, threadID, name string) error
	Send(ctx context.Context, threadID, content string) error
	CreateThread(ctx context.Context, channelID string, thread NewThread) (*Thread, error)
}

// TagSelector picks tag names for a piece of content out of the available
// names. It never fails; an empty result means no tags.
type TagSelector interface {
	Tags(ctx context.Context, available []string, content string) []string
}

// Recorder receives every successful forum mutation.
type Recorder interface {
	RecordPublication(p models.Publication) error
}
