package commands

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

var banditTimePattern = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

var Bandit = discord.SlashCommandCreate{
	Name:        "bandit",
	Description: "🏴 When can the next bandit event spawn?",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "start",
			Description: "Start time of the previous event in UTC, for example 17:40",
			Required:    true,
		},
		discord.ApplicationCommandOptionBool{
			Name:        "show",
			Description: "Post the answer publicly instead of just to you",
		},
	},
}

func BanditHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		data := e.SlashCommandInteractionData()

		hh, mm, ok := parseBanditStart(data.String("start"))
		if !ok {
			return utils.EH.CreateErrorEmbed(e, "That is not a valid time. Use 24h UTC, for example `17:40`.")
		}

		start := lastOccurrence(time.Now().UTC(), hh, mm)
		from, to := banditWindow(start)

		var flags discord.MessageFlags
		if show, _ := data.OptBool("show"); !show {
			flags = discord.MessageFlagEphemeral
		}

		return e.CreateMessage(discord.MessageCreate{
			Flags: flags,
			Embeds: []discord.Embed{{
				Title: "Bandit event",
				Description: fmt.Sprintf(
					"Previous event started at <t:%d:t>.\nBe ready between <t:%d:t> and <t:%d:t> (<t:%d:R>).",
					start.Unix(), from.Unix(), to.Unix(), from.Unix()),
				Color:     config.BanditColor,
				Thumbnail: &discord.EmbedResource{URL: config.BanditThumbnail},
			}},
		})
	}
}

func parseBanditStart(s string) (hh, mm int, ok bool) {
	m := banditTimePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, false
	}
	hh, _ = strconv.Atoi(m[1])
	mm, _ = strconv.Atoi(m[2])
	return hh, mm, true
}

// lastOccurrence resolves hh:mm to the most recent UTC time of day at or
// before now.
func lastOccurrence(now time.Time, hh, mm int) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, time.UTC)
	if t.After(now) {
		t = t.Add(-24 * time.Hour)
	}
	return t
}

// banditWindow returns when to start watching for the next spawn, announced
// ahead of the actual window.
func banditWindow(start time.Time) (from, to time.Time) {
	return start.Add(config.BanditWindowEarliest), start.Add(config.BanditWindowLatest)
}
