package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/comp"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

var Comp = discord.SlashCommandCreate{
	Name:        "comp",
	Description: "⚔️ Manage comp sign-ups",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Post a new comp with a signup thread",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "edit",
			Description: "Edit the roster of this signup thread",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "assign",
			Description: "Put a member into a slot",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "slot",
					Description: "Slot number as shown on the roster",
					Required:    true,
				},
				discord.ApplicationCommandOptionUser{
					Name:        "member",
					Description: "Member to assign",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "unassign",
			Description: "Free a slot",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionInt{
					Name:        "slot",
					Description: "Slot number as shown on the roster",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "cancel",
			Description: "Cancel the comp of this signup thread",
		},
	},
}

func CompCreateHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		return e.Modal(discord.ModalCreate{
			CustomID: "/comp-create",
			Title:    "Create a comp",
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewShortTextInput("title", "Title").
						WithRequired(true).
						WithMaxLength(90).
						WithPlaceholder("Saturday ZvZ"),
				),
				discord.NewActionRow(
					discord.NewParagraphTextInput("template", "Roster").
						WithRequired(true).
						WithPlaceholder("# Saturday ZvZ @comp\nTank | 1h mace\nHealer\nDPS"),
				),
			},
		})
	}
}

func CompCreateModalHandler(b *albionbot.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		title := strings.TrimSpace(e.Data.Text("title"))
		template := e.Data.Text("template")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		rec, err := b.CompService.Create(ctx, e.Channel().ID().String(), title, template, actorFrom(b, e.User(), e.Member()))
		if err != nil {
			return ephemeralError(e, templateErrorText(err))
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: fmt.Sprintf("Comp posted, sign-ups go in <#%s>.", rec.ThreadID),
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}

func CompEditHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		rec, err := lookupThreadComp(b, e)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, err.Error())
		}
		return e.Modal(discord.ModalCreate{
			CustomID: fmt.Sprintf("/comp-edit/%d", rec.ID),
			Title:    "Edit comp",
			Components: []discord.ContainerComponent{
				discord.NewActionRow(
					discord.NewParagraphTextInput("template", "Roster").
						WithRequired(true).
						WithValue(rec.RawTemplate),
				),
			},
		})
	}
}

func CompEditModalHandler(b *albionbot.Bot) handler.ModalHandler {
	return func(e *handler.ModalEvent) error {
		compID, err := strconv.ParseInt(e.Vars["comp_id"], 10, 64)
		if err != nil {
			return ephemeralError(e, "This edit form is no longer valid.")
		}
		template := e.Data.Text("template")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := b.CompService.Edit(ctx, compID, template, actorFrom(b, e.User(), e.Member())); err != nil {
			return ephemeralError(e, templateErrorText(err))
		}
		return e.CreateMessage(discord.MessageCreate{
			Content: "Updating the comp, the roster message will refresh in a moment.",
			Flags:   discord.MessageFlagEphemeral,
		})
	}
}

func CompAssignHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		rec, err := lookupThreadComp(b, e)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, err.Error())
		}
		data := e.SlashCommandInteractionData()
		target := data.User("member")

		b.CompService.Assign(rec.ID,
			data.Int("slot"),
			comp.Assignee{ID: target.ID.String(), DisplayName: target.EffectiveName()},
			actorFrom(b, e.User(), e.Member()),
			comp.MessageRef{ChannelID: rec.ThreadID},
		)
		return ackInThread(e)
	}
}

func CompUnassignHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		rec, err := lookupThreadComp(b, e)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, err.Error())
		}
		data := e.SlashCommandInteractionData()

		b.CompService.Release(rec.ID,
			data.Int("slot"),
			actorFrom(b, e.User(), e.Member()),
			comp.MessageRef{ChannelID: rec.ThreadID},
		)
		return ackInThread(e)
	}
}

func CompCancelHandler(b *albionbot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		rec, err := lookupThreadComp(b, e)
		if err != nil {
			return utils.EH.CreateErrorEmbed(e, err.Error())
		}
		b.CompService.Cancel(rec.ID,
			actorFrom(b, e.User(), e.Member()),
			comp.MessageRef{ChannelID: rec.ThreadID},
		)
		return ackInThread(e)
	}
}

// lookupThreadComp resolves the comp whose signup thread the command was run
// in. Everything except create is thread-scoped so the comp never has to be
// named by id.
func lookupThreadComp(b *albionbot.Bot, e *handler.CommandEvent) (*models.Comp, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rec, err := b.CompService.LookupByThread(ctx, e.Channel().ID().String())
	if errors.Is(err, repositories.ErrCompNotFound) {
		return nil, errors.New("Run this inside a comp signup thread.")
	}
	if err != nil {
		return nil, errors.New("Failed to look up this comp. Please try again later.")
	}
	return rec, nil
}

func actorFrom(b *albionbot.Bot, user discord.User, member *discord.ResolvedMember) comp.Actor {
	actor := comp.Actor{ID: user.ID.String(), DisplayName: user.EffectiveName()}
	if member != nil {
		if member.Nick != nil && *member.Nick != "" {
			actor.DisplayName = *member.Nick
		}
		actor.Override = b.IsSuperAdmin(member.RoleIDs)
	}
	return actor
}

func ackInThread(e *handler.CommandEvent) error {
	return e.CreateMessage(discord.MessageCreate{
		Content: "On it, the result will show up in this thread.",
		Flags:   discord.MessageFlagEphemeral,
	})
}

func ephemeralError(e *handler.ModalEvent, message string) error {
	return e.CreateMessage(discord.MessageCreate{
		Content: message,
		Flags:   discord.MessageFlagEphemeral,
	})
}

func templateErrorText(err error) string {
	switch {
	case errors.Is(err, comp.ErrNoSlots):
		return "The roster needs at least one role line. Lines starting with `#` are kept as comments."
	case errors.Is(err, comp.ErrTooManySlots):
		return fmt.Sprintf("A comp can have at most %d slots.", comp.MaxSlots)
	default:
		return "Something went wrong: " + err.Error()
	}
}
