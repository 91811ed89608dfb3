package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"news-forum-bot/bot"
	"news-forum-bot/forum"
	"news-forum-bot/models"
	"news-forum-bot/pipeline"
	"news-forum-bot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	setupTimeout       = 30 * time.Second
	recentPublications = 5
)

// HandleFetchNews handles the logic for the /fetchnews command.
func HandleFetchNews(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Respond to the interaction immediately.
	respondEphemeral(s, i, "📰 已開始抓取新聞，完成後會通知你。")

	// Run the pipeline in a goroutine.
	go func() {
		log.Printf("Starting manual news run requested by %s", interactionUserID(i))
		report, err := b.Pipeline.Run(b.Context(), pipeline.TriggerManual)

		_, ferr := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: fetchResultMessage(report, err),
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if ferr != nil {
			log.Printf("Error sending fetchnews followup: %v", ferr)
		}
	}()
}

func fetchResultMessage(report models.RunReport, err error) string {
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		return "⏳ 已有新聞任務正在執行，請稍後再試。"
	case err != nil:
		return fmt.Sprintf("⚠️ 新聞任務完成，但發生錯誤：%v\n%s", err, pipeline.Summary(report))
	default:
		return "✅ " + pipeline.Summary(report)
	}
}

// HandleAddForumChannel handles the logic for the /add_forum_channel command.
func HandleAddForumChannel(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "此指令只能在伺服器中使用。")
		return
	}

	data := i.ApplicationCommandData()
	opts := optionMap(data.Options)
	var channelID string
	if opt, ok := opts["channel"]; ok {
		channelID, _ = opt.Value.(string)
	}
	if channelID == "" {
		respondEphemeral(s, i, "Error: 請選擇一個論壇頻道。")
		return
	}
	if data.Resolved != nil {
		if ch, ok := data.Resolved.Channels[channelID]; ok && ch.Type != discordgo.ChannelTypeGuildForum {
			respondEphemeral(s, i, fmt.Sprintf("Error: <#%s> 不是論壇頻道。", channelID))
			return
		}
	}
	setup := true
	if opt, ok := opts["setup"]; ok {
		setup = opt.BoolValue()
	}

	if err := deferEphemeral(s, i); err != nil {
		log.Printf("Error deferring add_forum_channel response: %v", err)
		return
	}

	var lines []string
	if b.Registry.Add(i.GuildID, channelID) {
		if err := b.Registry.Save(); err != nil {
			utils.Error("Handlers", "AddForumChannel", err.Error())
			editResponse(s, i, fmt.Sprintf("❌ 無法保存頻道清單：%v", err))
			return
		}
		lines = append(lines, fmt.Sprintf("✅ 已將 <#%s> 加入新聞發布清單。", channelID))
	} else {
		lines = append(lines, fmt.Sprintf("ℹ️ <#%s> 已在新聞發布清單中。", channelID))
	}

	if setup {
		ctx, cancel := context.WithTimeout(b.Context(), setupTimeout)
		defer cancel()
		if err := forum.SetupChannel(ctx, s, channelID, b.Forum); err != nil {
			log.Printf("Error setting up forum channel %s: %v", channelID, err)
			lines = append(lines, fmt.Sprintf("⚠️ 頻道設定失敗：%v", err))
		} else {
			lines = append(lines, "🛠️ 已更新頻道主題、標籤與版面。")
		}
	}

	utils.Info("Handlers", "AddForumChannel", fmt.Sprintf("guild %s channel %s added by %s", i.GuildID, channelID, interactionUserID(i)))
	editResponse(s, i, strings.Join(lines, "\n"))
}

// HandleRemoveForumChannel handles the logic for the /remove_forum_channel command.
func HandleRemoveForumChannel(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		respondEphemeral(s, i, "此指令只能在伺服器中使用。")
		return
	}

	var channelID string
	if opt, ok := optionMap(i.ApplicationCommandData().Options)["channel_id"]; ok {
		channelID = parseChannelID(opt.StringValue())
	}
	if channelID == "" {
		respondEphemeral(s, i, "Error: 請提供頻道 ID。")
		return
	}

	if !b.Registry.Remove(i.GuildID, channelID) {
		respondEphemeral(s, i, fmt.Sprintf("ℹ️ <#%s> 不在新聞發布清單中。", channelID))
		return
	}
	if err := b.Registry.Save(); err != nil {
		utils.Error("Handlers", "RemoveForumChannel", err.Error())
		respondEphemeral(s, i, fmt.Sprintf("❌ 無法保存頻道清單：%v", err))
		return
	}

	utils.Info("Handlers", "RemoveForumChannel", fmt.Sprintf("guild %s channel %s removed by %s", i.GuildID, channelID, interactionUserID(i)))
	respondEphemeral(s, i, fmt.Sprintf("✅ 已將 <#%s> 移出新聞發布清單。", channelID))
}

// HandleNewsStatus handles the logic for the /news_status command.
func HandleNewsStatus(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	status := newsStatus{
		MemorySize: len(b.Pipeline.Memory()),
		Channels:   b.Registry.GuildChannels(i.GuildID),
		Run:        b.Status.Status(),
		Location:   b.Location,
	}

	var err error
	if status.Counts, err = b.Ledger.CountSince(i.GuildID, time.Now().Add(-24 * time.Hour).Unix()); err != nil {
		log.Printf("Error counting publications: %v", err)
	}
	if status.Recent, err = b.Ledger.RecentPublications(i.GuildID, recentPublications); err != nil {
		log.Printf("Error reading recent publications: %v", err)
	}

	respondEphemeral(s, i, formatNewsStatus(status))
}

// HandlePing handles the logic for the /ping command.
func HandlePing(s *discordgo.Session, i *discordgo.InteractionCreate) {
	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("Pong! (%s)", s.HeartbeatLatency().Round(time.Millisecond)),
		},
	})
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// parseChannelID accepts a raw ID or a <#id> mention.
func parseChannelID(value string) string {
	value = strings.TrimSpace(value)
	value = strings.TrimPrefix(value, "<#")
	return strings.TrimSuffix(value, ">")
}
