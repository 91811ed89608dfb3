package command

import "github.com/bwmarrin/discordgo"

var forumChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildForum}

// FetchNewsCommand defines the structure for the /fetchnews command.
type FetchNewsCommand struct{}

// Definition returns the application command definition.
func (c *FetchNewsCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "fetchnews",
		Description: "立即抓取新聞並發布到論壇頻道",
	}
}

// AddForumChannelCommand defines the structure for the /add_forum_channel command.
type AddForumChannelCommand struct{}

// Definition returns the application command definition.
func (c *AddForumChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "add_forum_channel",
		Description: "將論壇頻道加入新聞發布清單",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         "channel",
				Description:  "要發布新聞的論壇頻道",
				Type:         discordgo.ApplicationCommandOptionChannel,
				ChannelTypes: forumChannelTypes,
				Required:     true,
			},
			{
				Name:        "setup",
				Description: "同時設定頻道主題、標籤與版面（預設開啟）",
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Required:    false,
			},
		},
	}
}

// RemoveForumChannelCommand defines the structure for the /remove_forum_channel command.
type RemoveForumChannelCommand struct{}

// Definition returns the application command definition.
func (c *RemoveForumChannelCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "remove_forum_channel",
		Description: "將論壇頻道移出新聞發布清單",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Name:         "channel_id",
				Description:  "要移除的論壇頻道（已刪除的頻道也可選擇）",
				Type:         discordgo.ApplicationCommandOptionString,
				Required:     true,
				Autocomplete: true,
			},
		},
	}
}

// NewsStatusCommand defines the structure for the /news_status command.
type NewsStatusCommand struct{}

// Definition returns the application command definition.
func (c *NewsStatusCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "news_status",
		Description: "查看新聞機器人的運行狀態",
	}
}

// PingCommand defines the structure for the /ping command.
type PingCommand struct{}

// Definition returns the application command definition.
func (c *PingCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Responds with Pong!",
	}
}
