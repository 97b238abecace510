package commands

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/guides"
)

var Roles = discord.SlashCommandCreate{
	Name:        "roles",
	Description: "🛡️ Post the ZvZ roles guide",
}

func RolesHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		root := guides.Root()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       root.Title,
				Description: root.Text,
				Color:       config.RolesGuideColor,
				Thumbnail:   &discord.EmbedResource{URL: config.RolesGuideThumbnail},
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewPrimaryButton("Browse roles", "/roles-tree/"+root.Name),
				),
			},
		})
	}
}
