package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

const statsPerPage = 10

var GuideStats = discord.SlashCommandCreate{
	Name:        "guidestats",
	Description: "📊 Who reads which weapon guides",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "weapons",
			Description: "Most opened weapon guides",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "readers",
			Description: "Members who open the most guides",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "me",
			Description: "Guides you have opened",
		},
	},
}

func GuideStatsWeaponsHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rows, err := b.GuideStatRepository.TopWeapons(ctx, 100)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch guide statistics. Please try again later.")
		}
		lines := make([]string, len(rows))
		for i, row := range rows {
			lines[i] = fmt.Sprintf("%d. **%s** opened %d times", i+1, row.Weapon, row.Count)
		}
		return paginateStats(b, e, "Most opened guides", lines)
	}
}

func GuideStatsReadersHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rows, err := b.GuideStatRepository.TopUsers(ctx, 100)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch guide statistics. Please try again later.")
		}
		lines := make([]string, len(rows))
		for i, row := range rows {
			lines[i] = fmt.Sprintf("%d. **%s** opened %d guides", i+1, row.DisplayName, row.Count)
		}
		return paginateStats(b, e, "Top guide readers", lines)
	}
}

func GuideStatsMeHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		rows, err := b.GuideStatRepository.UserStats(ctx, e.User().ID.String())
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, "Failed to fetch guide statistics. Please try again later.")
		}
		lines := make([]string, len(rows))
		for i, row := range rows {
			lines[i] = fmt.Sprintf("**%s**, %d times", row.Weapon, row.Count)
		}
		return paginateStats(b, e, fmt.Sprintf("Guides opened by %s", e.User().EffectiveName()), lines)
	}
}

func paginateStats(b *albionbot.Bot, e *handler.CommandEvent, title string, lines []string) error {
	if len(lines) == 0 {
		return utils.EH.CreateInfoEmbed(e, "Nothing recorded yet.")
	}

	totalPages := int(math.Ceil(float64(len(lines)) / float64(statsPerPage)))
	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			startIdx := page * statsPerPage
			endIdx := min(startIdx+statsPerPage, len(lines))

			embed.
				SetTitle(title).
				SetDescription(strings.Join(lines[startIdx:endIdx], "\n")).
				SetColor(config.GuideColor).
				SetFooter(fmt.Sprintf("Page %d/%d", page+1, totalPages), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}
