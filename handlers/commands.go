package handlers

import (
	"log"

	"news-forum-bot/bot"
	"news-forum-bot/utils"

	"github.com/bwmarrin/discordgo"
)

var commandPermissions = map[string]string{
	"fetchnews":            "admin",
	"add_forum_channel":    "admin",
	"remove_forum_channel": "admin",
	"news_status":          "guest",
	"ping":                 "guest",
}

// CommandDispatcher is the central handler for all application command interactions.
// It performs permission checks and then dispatches the interaction to the appropriate handler.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	auth, err := utils.NewAuth()
	if err != nil {
		log.Printf("Failed to create auth instance: %v", err)
		respondEphemeral(s, i, "🚫内部错误：无法读取权限配置")
		return
	}

	commandName := i.ApplicationCommandData().Name
	requiredLevel, ok := commandPermissions[commandName]

	if ok {
		if !auth.CheckPermission(i, requiredLevel) {
			respondEphemeral(s, i, "🚫 你没有权限执行此命令")
			return
		}
	}

	switch commandName {
	case "fetchnews":
		HandleFetchNews(b, s, i)
	case "add_forum_channel":
		HandleAddForumChannel(b, s, i)
	case "remove_forum_channel":
		HandleRemoveForumChannel(b, s, i)
	case "news_status":
		HandleNewsStatus(b, s, i)
	case "ping":
		HandlePing(s, i)
	default:
		// Optionally, send an error message for unknown commands.
		respondEphemeral(s, i, "🚫内部错误：Unknown command.")
	}
}

func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

func deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
