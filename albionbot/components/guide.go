package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/guides"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

const guideFooter = "Exclusive to Highland Brotherhood"

// GuideButtonHandler opens a weapon guide as an ephemeral embed and records
// who opened it.
func GuideButtonHandler(b *albionbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		category := e.Vars["category"]
		weapon := e.Vars["weapon"]

		body, err := b.GuideStore.Guide(category, weapon)
		if errors.Is(err, guides.ErrGuideNotFound) {
			return utils.EH.CreateEphemeralError(e, "That guide does not exist anymore.")
		}
		if err != nil {
			return utils.EH.CreateEphemeralError(e, "Failed to load the guide. Please try again later.")
		}

		go recordGuideOpen(b, e.User(), e.Member(), weapon)

		if len(body) > config.MaxEmbedLength {
			body = body[:config.MaxEmbedLength]
		}
		return e.CreateMessage(discord.MessageCreate{
			Flags: discord.MessageFlagEphemeral,
			Embeds: []discord.Embed{{
				Title:       weapon,
				Description: body,
				Color:       config.GuideColor,
				Footer:      &discord.EmbedFooter{Text: guideFooter},
			}},
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewSecondaryButton("I have a question", "/ask/"+weapon),
				),
			},
		})
	}
}

// AskButtonHandler turns a guide question into a public ping so someone who
// plays the weapon can pick it up.
func AskButtonHandler(b *albionbot.Bot) handler.ComponentHandler {
	return func(e *handler.ComponentEvent) error {
		weapon := e.Vars["weapon"]
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("<@%s> has a question about **%s**. Can anyone who plays it help out?",
				e.User().ID, weapon),
		})
	}
}

func recordGuideOpen(b *albionbot.Bot, user discord.User, member *discord.ResolvedMember, weapon string) {
	displayName := user.EffectiveName()
	if member != nil && member.Nick != nil && *member.Nick != "" {
		displayName = *member.Nick
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.GuideStatRepository.Record(ctx, user.ID.String(), displayName, weapon); err != nil {
		slog.Error("Failed to record guide opening",
			slog.String("type", "guides"),
			slog.String("weapon", weapon),
			slog.Any("error", err))
	}
}
