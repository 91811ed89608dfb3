package forum

import (
	"context"
	"fmt"
	"log"
	"strings"

	"news-forum-bot/models"

	"github.com/bwmarrin/discordgo"
)

// maxAvailableTags is the platform limit of tags per forum channel.
const maxAvailableTags = 20

// MergeTags returns the channel's existing tags followed by the configured
// names it does not have yet, capped at maxAvailableTags.
func MergeTags(existing []discordgo.ForumTag, wanted []string) []discordgo.ForumTag {
	merged := make([]discordgo.ForumTag, 0, len(existing)+len(wanted))
	have := make(map[string]bool, len(existing))
	for _, tag := range existing {
		merged = append(merged, tag)
		have[tag.Name] = true
	}
	for _, name := range wanted {
		name = strings.TrimSpace(name)
		if name == "" || have[name] {
			continue
		}
		if len(merged) >= maxAvailableTags {
			log.Printf("[forum] tag limit reached, skipping tag %q", name)
			continue
		}
		merged = append(merged, discordgo.ForumTag{Name: name})
		have[name] = true
	}
	return merged
}

// SetupChannel prepares a newly registered forum channel: name, topic, tag
// vocabulary, default layout and sort order by creation date.
func SetupChannel(ctx context.Context, s *discordgo.Session, channelID string, cfg models.ForumConfig) error {
	ch, err := s.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
		}
		return fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	if ch.Type != discordgo.ChannelTypeGuildForum {
		return fmt.Errorf("%w: %s is not a forum channel", ErrChannelNotFound, channelID)
	}

	tags := MergeTags(ch.AvailableTags, cfg.Tags)
	layout := discordgo.ForumLayoutListView
	if strings.EqualFold(cfg.Layout, "gallery") {
		layout = discordgo.ForumLayoutGalleryView
	}
	sortOrder := discordgo.ForumSortOrderCreationDate

	edit := &discordgo.ChannelEdit{
		Topic:              cfg.Topic,
		AvailableTags:      &tags,
		DefaultForumLayout: &layout,
		DefaultSortOrder:   &sortOrder,
	}
	if cfg.Name != "" {
		edit.Name = cfg.Name
	}

	if _, err := s.ChannelEdit(channelID, edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to set up channel %s: %w", channelID, err)
	}
	log.Printf("[forum] channel %s initialized with %d tags", channelID, len(tags))
	return nil
}
