package components

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/json"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/guides"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

// RolesTreeHandler navigates the ZvZ roles guide in place. The button custom
// id carries the full path from the root, so every click can rebuild the
// panel without any per-user state.
func RolesTreeHandler(b *albionbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		path := guides.ParsePath(e.Vars["path"])
		if len(path) == 0 || path[0] != guides.Root().Name {
			return utils.EH.CreateEphemeralError(e, "This roles panel is no longer valid. Run /roles again.")
		}

		node := guides.Find(path[1:])
		if node == nil {
			return utils.EH.CreateEphemeralError(e, "That entry does not exist anymore. Run /roles again.")
		}

		embed := discord.Embed{
			Title:       node.Title,
			Description: node.Text,
			Color:       config.RolesGuideColor,
		}
		if node.Icon != "" {
			embed.Thumbnail = &discord.EmbedResource{URL: node.Icon}
		}

		return e.UpdateMessage(discord.MessageUpdate{
			Embeds:     &[]discord.Embed{embed},
			Components: json.Ptr(rolesTreeButtons(path, node)),
		})
	}
}

func rolesTreeButtons(path []string, node *guides.Node) []discord.ContainerComponent {
	var buttons []discord.InteractiveComponent
	for _, child := range node.Children {
		buttons = append(buttons, discord.NewPrimaryButton(
			child.Name,
			"/roles-tree/"+guides.JoinPath(append(append([]string{}, path...), child.Name)),
		))
	}

	// One row stays reserved for the back button.
	var rows []discord.ContainerComponent
	for len(buttons) > 0 && len(rows) < config.MaxActionRows-1 {
		n := min(config.MaxButtonsPerRow, len(buttons))
		rows = append(rows, discord.NewActionRow(buttons[:n]...))
		buttons = buttons[n:]
	}

	if len(path) > 1 {
		rows = append(rows, discord.NewActionRow(
			discord.NewSecondaryButton("Back", "/roles-tree/"+guides.JoinPath(path[:len(path)-1])),
		))
	}
	return rows
}
