package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/json"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/highland-brotherhood/albion-bot/albionbot/albion"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
)

var famePrinter = message.NewPrinter(language.English)

// HandleKillboard posts a killboard profile embed for a registered member.
// modOverride lets admins look up game names that are not registered here,
// which goes straight to the Albion search API.
func (h *RegisterHandler) HandleKillboard(e *events.MessageCreate, args []string, modOverride bool) {
	if modOverride && !h.isAdmin(e.Message.Member) {
		h.refuse(e, "You do not have permission to use this command.")
		return
	}

	nameArg := strings.Join(args, " ")
	if len(e.Message.Mentions) == 0 && nameArg == "" {
		h.refuse(e, "Usage: `!kb @member` or `!kb GameName` (the game name must be registered).")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var (
		reg *models.Registration
		err error
	)
	if len(e.Message.Mentions) > 0 {
		reg, err = h.b.RegistrationService.InfoByDiscordID(ctx, e.Message.Mentions[0].ID.String())
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			h.refuse(e, fmt.Sprintf("<@%s> is not linked to any game name.", e.Message.Mentions[0].ID))
			return
		}
	} else {
		reg, err = h.b.RegistrationService.InfoByGameName(ctx, nameArg)
		if errors.Is(err, repositories.ErrRegistrationNotFound) {
			if !modOverride {
				h.refuse(e, fmt.Sprintf("The game name **%s** is not linked to any Discord account in this server.", nameArg))
				return
			}
			reg, err = nil, nil
		}
	}
	if err != nil {
		h.refuse(e, "Failed to look up the registration. Please try again later.")
		return
	}

	var player *albion.Player
	if reg != nil {
		player, err = h.b.AlbionClient.GetPlayer(ctx, reg.GameID)
	} else {
		player, err = h.b.AlbionClient.FindExact(ctx, nameArg)
	}
	if errors.Is(err, albion.ErrPlayerNotFound) {
		h.refuse(e, fmt.Sprintf("No Albion character named **%s** was found.", nameArg))
		return
	}
	if err != nil {
		h.refuse(e, "Error contacting the Albion API, try again later.")
		return
	}

	h.replyEmbed(e, killboardEmbed(reg, player))
}

func killboardEmbed(reg *models.Registration, player *albion.Player) discord.Embed {
	user := "`N/A`"
	if reg != nil {
		user = fmt.Sprintf("<@%s>", reg.DiscordID)
	}

	guild := "-"
	if player.GuildName != "" {
		guild = fmt.Sprintf("[%s](https://albiononline.com/killboard/guild/%s)", player.GuildName, player.GuildID)
	}
	alliance := "-"
	if player.AllianceName != "" {
		alliance = fmt.Sprintf("[%s](https://albiononline.com/killboard/alliance/%s)", player.AllianceName, player.AllianceID)
	}

	stats := fmt.Sprintf("**Guild**: %s\n**Alliance**: %s\n**Kill Fame**: %s\n**Death Fame**: %s\n**Ratio**: %.2f",
		guild, alliance,
		famePrinter.Sprintf("%d", player.KillFame),
		famePrinter.Sprintf("%d", player.DeathFame),
		player.FameRatio)
	if pve := player.LifetimeStatistics.PvE.Total; pve != 0 {
		stats += fmt.Sprintf("\n**PvE Fame**: %s", famePrinter.Sprintf("%d", pve))
	}

	profiles := strings.Join([]string{
		fmt.Sprintf("[MurderLedger](https://murderledger-europe.albiononline2d.com/players/%s/ledger)", player.Name),
		fmt.Sprintf("[Albion killboard](https://albiononline.com/killboard/player/%s)", player.ID),
		fmt.Sprintf("[AlbionBB](https://europe.albionbb.com/players/%s)", player.Name),
		fmt.Sprintf("[AOTracker](https://aotracker.gg/europe/players/%s)", player.Name),
	}, "\n")

	return discord.Embed{
		Title: "Player info",
		Color: config.InfoColor,
		Fields: []discord.EmbedField{
			{Name: "User", Value: user, Inline: json.Ptr(true)},
			{Name: "Game name", Value: player.Name, Inline: json.Ptr(true)},
			{Name: "Stats", Value: stats, Inline: json.Ptr(true)},
			{Name: "Profiles", Value: profiles, Inline: json.Ptr(true)},
		},
	}
}
