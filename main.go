package main

import (
	"news-forum-bot/bot"
	"news-forum-bot/command"
	"news-forum-bot/handlers"
)

func main() {
	commands := make([]bot.Command, len(command.AllCommands))
	for i, cmd := range command.AllCommands {
		commands[i] = cmd
	}

	bot.Run(handlers.Register, commands)
}
