package handlers

import (
	"log"
	"strings"

	"news-forum-bot/bot"

	"github.com/bwmarrin/discordgo"
)

// maxChoices is Discord's limit on autocomplete choices.
const maxChoices = 25

// HandleAutocomplete handles all autocomplete interactions.
func HandleAutocomplete(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	switch data.Name {
	case "remove_forum_channel":
		for _, opt := range data.Options {
			if opt.Name == "channel_id" && opt.Focused {
				handleChannelAutocomplete(b, s, i, opt.StringValue())
			}
		}
	}
}

func handleChannelAutocomplete(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate, query string) {
	channels := b.Registry.GuildChannels(i.GuildID)
	choices := channelChoices(channels, func(id string) string {
		if ch, err := s.State.Channel(id); err == nil {
			return ch.Name
		}
		return ""
	}, query)

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
	if err != nil {
		log.Printf("Error responding to autocomplete interaction: %v", err)
	}
}

// channelChoices lists registered channels whose name or ID contains query.
// Channels missing from the cache are shown by ID so they can still be removed.
func channelChoices(channelIDs []string, name func(string) string, query string) []*discordgo.ApplicationCommandOptionChoice {
	query = strings.ToLower(strings.TrimSpace(query))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(channelIDs))
	for _, id := range channelIDs {
		label := name(id)
		if label == "" {
			label = id + "（已刪除或無法存取）"
		} else {
			label = "#" + label
		}
		if query != "" && !strings.Contains(strings.ToLower(label), query) && !strings.Contains(id, query) {
			continue
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: label, Value: id})
		if len(choices) == maxChoices {
			break
		}
	}
	return choices
}
