package handlers

import (
	"strings"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/comp"
)

// MessageHandler routes plain guild messages. Comp signup threads get first
// pick so a lone number in a thread is always a signup, then the message
// command prefix is tried.
func MessageHandler(b *albionbot.Bot, reg *RegisterHandler) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.Message.Author.Bot || e.GuildID == nil {
			return
		}
		content := strings.TrimSpace(e.Message.Content)
		if content == "" {
			return
		}

		src := comp.MessageRef{
			ChannelID: e.ChannelID.String(),
			MessageID: e.MessageID.String(),
		}
		if b.CompService.HandleThreadMessage(e.ChannelID.String(), content, messageActor(b, e), src) {
			return
		}

		if !strings.HasPrefix(content, "!") {
			return
		}
		fields := strings.Fields(content)
		cmd := strings.ToLower(fields[0])
		args := fields[1:]

		if !reg.InAllowedChannel(e) {
			return
		}

		switch cmd {
		case "!register":
			reg.HandleRegister(e, args, false)
		case "!link":
			reg.HandleRegister(e, args, true)
		case "!unregister":
			reg.HandleUnregister(e)
		case "!registerinfo":
			reg.HandleInfo(e, args)
		case "!kb":
			reg.HandleKillboard(e, args, false)
		case "!modkb":
			reg.HandleKillboard(e, args, true)
		case "!registerhelp", "!help":
			reg.HandleHelp(e)
		}
	})
}

// MessageDeleteHandler purges comps whose roster message was deleted.
func MessageDeleteHandler(b *albionbot.Bot) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageDelete) {
		b.CompService.HandleRosterMessageDeleted(e.MessageID.String())
	})
}

// MemberLeaveHandler drops registrations of members who leave the server.
func MemberLeaveHandler(b *albionbot.Bot, reg *RegisterHandler) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.GuildMemberLeave) {
		reg.PurgeMember(e.User.ID)
	})
}

func messageActor(b *albionbot.Bot, e *events.MessageCreate) comp.Actor {
	actor := comp.Actor{
		ID:          e.Message.Author.ID.String(),
		DisplayName: e.Message.Author.EffectiveName(),
	}
	if m := e.Message.Member; m != nil {
		if m.Nick != nil && *m.Nick != "" {
			actor.DisplayName = *m.Nick
		}
		actor.Override = b.IsSuperAdmin(m.RoleIDs)
	}
	return actor
}
