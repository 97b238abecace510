package commands

import (
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

var Weapons = discord.SlashCommandCreate{
	Name:        "weapons",
	Description: "📚 Post the weapon guide picker",
}

// WeaponsHandler posts one message per guide category, each carrying a button
// per weapon. The buttons stay clickable indefinitely, which is why the
// picker is posted publicly instead of as an interaction response.
func WeaponsHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		categories := b.GuideStore.Categories()
		if len(categories) == 0 {
			return utils.EH.CreateErrorEmbed(e, "No weapon guides are loaded yet. Try again in a minute.")
		}

		if err := e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "Weapon guides",
				Description: "Pick a weapon below to open its guide.",
				Color:       config.GuideColor,
			}},
		}); err != nil {
			return err
		}

		channelID := e.Channel().ID()
		for _, category := range categories {
			var buttons []discord.InteractiveComponent
			for _, entry := range b.GuideStore.Entries() {
				if entry.Category != category {
					continue
				}
				buttons = append(buttons, discord.NewPrimaryButton(
					entry.Weapon,
					fmt.Sprintf("/guide/%s/%s", entry.Category, entry.Weapon),
				))
			}
			if _, err := e.Client().Rest().CreateMessage(channelID, discord.MessageCreate{
				Content:    "**" + category + "**",
				Components: buttonRows(buttons),
			}); err != nil {
				slog.Error("Failed to post weapon picker category",
					slog.String("type", "guides"),
					slog.String("category", category),
					slog.Any("error", err))
			}
		}
		return nil
	}
}

// buttonRows chunks buttons into action rows within the per-message limits.
func buttonRows(buttons []discord.InteractiveComponent) []discord.ContainerComponent {
	var rows []discord.ContainerComponent
	for len(buttons) > 0 && len(rows) < config.MaxActionRows {
		n := min(config.MaxButtonsPerRow, len(buttons))
		rows = append(rows, discord.NewActionRow(buttons[:n]...))
		buttons = buttons[n:]
	}
	return rows
}
