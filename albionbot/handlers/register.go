package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/albion"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/models"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
	"github.com/highland-brotherhood/albion-bot/albionbot/services"
	"github.com/highland-brotherhood/albion-bot/albionbot/utils"
)

// RegisterHandler owns the message based registration commands and the
// unregister confirmation flow. Unregistering is destructive, so it waits for
// an explicit button press and fails closed on silence.
type RegisterHandler struct {
	b *albionbot.Bot

	mu      sync.Mutex
	pending map[string]*pendingUnregister
}

type pendingUnregister struct {
	targetID  snowflake.ID
	invokerID snowflake.ID
	channelID snowflake.ID
	messageID snowflake.ID
	timer     *time.Timer
}

func NewRegisterHandler(b *albionbot.Bot) *RegisterHandler {
	return &RegisterHandler{
		b:       b,
		pending: make(map[string]*pendingUnregister),
	}
}

// HandleRegister links the author (or, for admins, a mentioned member) to an
// Albion character. keepNickname skips the nickname change, which is what
// !link is for.
func (h *RegisterHandler) HandleRegister(e *events.MessageCreate, args []string, keepNickname bool) {
	if len(args) == 0 {
		h.refuse(e, "Usage: `!register YourAlbionName`")
		return
	}
	gameName := args[0]
	invoker := e.Message.Author
	target := invoker

	if len(e.Message.Mentions) > 0 {
		if !h.isAdmin(e.Message.Member) {
			h.refuse(e, "Only admins can register other members.")
			return
		}
		target = e.Message.Mentions[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	player, err := h.b.RegistrationService.Register(ctx, target.ID.String(), gameName, invoker.ID.String())
	switch {
	case errors.Is(err, services.ErrInvalidGameName):
		h.refuse(e, "Albion names are 1 to 16 letters and digits.")
		return
	case errors.Is(err, albion.ErrPlayerNotFound):
		h.refuse(e, fmt.Sprintf("No Albion character named **%s** was found. Check the spelling.", gameName))
		return
	case errors.Is(err, repositories.ErrAlreadyRegistered):
		h.refuse(e, "That Discord account is already registered. Use `!unregister` first.")
		return
	case errors.Is(err, repositories.ErrGameNameTaken):
		h.refuse(e, fmt.Sprintf("**%s** is already registered to someone else.", gameName))
		return
	case err != nil:
		h.refuse(e, "Registration failed. Please try again later.")
		return
	}

	if e.GuildID != nil {
		h.applyMemberSetup(*e.GuildID, target.ID, player, keepNickname)
	}

	h.react(e, "✅")
	note := fmt.Sprintf("Registered <@%s> as **%s**", target.ID, player.Name)
	if player.GuildName != "" {
		note += fmt.Sprintf(" of **%s**", player.GuildName)
	}
	h.reply(e, note+".")
}

// HandleUnregister asks for confirmation before removing the link. The
// confirmation expires after a short window and expiry changes nothing.
func (h *RegisterHandler) HandleUnregister(e *events.MessageCreate) {
	invoker := e.Message.Author
	target := invoker

	if len(e.Message.Mentions) > 0 {
		if !h.isAdmin(e.Message.Member) {
			h.refuse(e, "Only admins can unregister other members.")
			return
		}
		target = e.Message.Mentions[0]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg, err := h.b.RegistrationService.InfoByDiscordID(ctx, target.ID.String())
	if errors.Is(err, repositories.ErrRegistrationNotFound) {
		h.refuse(e, "That account is not registered.")
		return
	}
	if err != nil {
		h.refuse(e, "Failed to look up the registration. Please try again later.")
		return
	}

	msg, err := e.Client().Rest().CreateMessage(e.ChannelID, discord.MessageCreate{
		Content: fmt.Sprintf("This will remove the link between <@%s> and **%s**. Sure?", target.ID, reg.GameName),
		Components: []discord.ContainerComponent{
			discord.NewActionRow(
				discord.NewDangerButton("Unregister", "/unregister-confirm/"+e.MessageID.String()),
				discord.NewSecondaryButton("Keep it", "/unregister-cancel/"+e.MessageID.String()),
			),
		},
	})
	if err != nil {
		slog.Error("Failed to post unregister confirmation",
			slog.String("type", "register"),
			slog.Any("error", err))
		return
	}

	token := e.MessageID.String()
	p := &pendingUnregister{
		targetID:  target.ID,
		invokerID: invoker.ID,
		channelID: e.ChannelID,
		messageID: msg.ID,
	}
	p.timer = time.AfterFunc(config.UnregisterConfirmWindow, func() {
		h.expire(token)
	})

	h.mu.Lock()
	h.pending[token] = p
	h.mu.Unlock()
}

// ConfirmUnregister is the button handler that actually removes the link.
func (h *RegisterHandler) ConfirmUnregister(e *handler.ComponentEvent) error {
	p, ok := h.take(e.Vars["token"], e.User().ID)
	if !ok {
		return utils.EH.CreateEphemeralError(e, "This confirmation is not yours or has expired.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reg, err := h.b.RegistrationService.Unregister(ctx, p.targetID.String())
	if err != nil {
		return utils.EH.CreateEphemeralError(e, "Failed to unregister. Please try again.")
	}

	if guildID := e.GuildID(); guildID != nil && h.b.Cfg.Register.VisitorRole != 0 {
		if err := e.Client().Rest().RemoveMemberRole(*guildID, p.targetID, h.b.Cfg.Register.VisitorRole); err != nil {
			slog.Warn("Failed to remove visitor role",
				slog.String("type", "register"),
				slog.Any("error", err))
		}
	}

	return e.UpdateMessage(discord.MessageUpdate{
		Content:    strPtr(fmt.Sprintf("<@%s> is no longer registered as **%s**.", p.targetID, reg.GameName)),
		Components: &[]discord.ContainerComponent{},
	})
}

// CancelUnregister dismisses a pending confirmation.
func (h *RegisterHandler) CancelUnregister(e *handler.ComponentEvent) error {
	if _, ok := h.take(e.Vars["token"], e.User().ID); !ok {
		return utils.EH.CreateEphemeralError(e, "This confirmation is not yours or has expired.")
	}
	return e.UpdateMessage(discord.MessageUpdate{
		Content:    strPtr("Kept the registration, nothing changed."),
		Components: &[]discord.ContainerComponent{},
	})
}

// HandleInfo shows who a game name or member is registered as.
func (h *RegisterHandler) HandleInfo(e *events.MessageCreate, args []string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var (
		reg *models.Registration
		err error
	)
	switch {
	case len(e.Message.Mentions) > 0:
		reg, err = h.b.RegistrationService.InfoByDiscordID(ctx, e.Message.Mentions[0].ID.String())
	case len(args) > 0:
		reg, err = h.b.RegistrationService.InfoByGameName(ctx, args[0])
	default:
		reg, err = h.b.RegistrationService.InfoByDiscordID(ctx, e.Message.Author.ID.String())
	}
	if errors.Is(err, repositories.ErrRegistrationNotFound) {
		h.refuse(e, "No registration found.")
		return
	}
	if err != nil {
		h.refuse(e, "Failed to look up the registration. Please try again later.")
		return
	}

	note := fmt.Sprintf("**%s** is registered to <@%s> since <t:%d:D>.",
		reg.GameName, reg.DiscordID, reg.RegisteredAt.Unix())
	if player, err := h.b.AlbionClient.GetPlayer(ctx, reg.GameID); err == nil {
		if player.GuildName != "" {
			note += fmt.Sprintf("\nGuild: **%s**", player.GuildName)
		}
		note += fmt.Sprintf("\nKill fame: %d, death fame: %d", player.KillFame, player.DeathFame)
	}
	h.reply(e, note)
}

// HandleHelp lists the message commands.
func (h *RegisterHandler) HandleHelp(e *events.MessageCreate) {
	h.reply(e, "Commands:\n"+
		"`!register YourAlbionName` links your Albion character and sets your nickname\n"+
		"`!link YourAlbionName` same, but keeps your nickname\n"+
		"`!unregister` removes the link after confirmation\n"+
		"`!registerinfo [name]` shows who a character belongs to\n"+
		"`!kb @member` or `!kb GameName` shows killboard stats of a registered member\n"+
		"`!modkb GameName` same, but works for unregistered names (admins only)")
}

// PurgeMember drops the registration of a member who left the server.
func (h *RegisterHandler) PurgeMember(userID snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reg, err := h.b.RegistrationService.Unregister(ctx, userID.String())
	if errors.Is(err, repositories.ErrRegistrationNotFound) {
		return
	}
	if err != nil {
		slog.Error("Failed to purge registration of departed member",
			slog.String("type", "register"),
			slog.String("discord_id", userID.String()),
			slog.Any("error", err))
		return
	}
	slog.Info("Registration purged after member left",
		slog.String("type", "register"),
		slog.String("discord_id", userID.String()),
		slog.String("game_name", reg.GameName))
}

func (h *RegisterHandler) isAdmin(member *discord.Member) bool {
	return member != nil && h.b.IsRegisterAdmin(member.RoleIDs)
}

// InAllowedChannel reports whether member commands may run here. Admins may
// use them anywhere.
func (h *RegisterHandler) InAllowedChannel(e *events.MessageCreate) bool {
	if len(h.b.Cfg.Register.Channels) == 0 || h.isAdmin(e.Message.Member) {
		return true
	}
	for _, id := range h.b.Cfg.Register.Channels {
		if id == e.ChannelID {
			return true
		}
	}
	return false
}

func (h *RegisterHandler) applyMemberSetup(guildID, userID snowflake.ID, player *albion.Player, keepNickname bool) {
	rest := h.b.Client.Rest()

	if !keepNickname {
		nick := h.b.RegistrationService.Nickname(player)
		if _, err := rest.UpdateMember(guildID, userID, discord.MemberUpdate{Nick: &nick}); err != nil {
			slog.Warn("Failed to set nickname",
				slog.String("type", "register"),
				slog.String("discord_id", userID.String()),
				slog.Any("error", err))
		}
	}
	if role := h.b.Cfg.Register.VisitorRole; role != 0 {
		if err := rest.AddMemberRole(guildID, userID, role); err != nil {
			slog.Warn("Failed to grant visitor role",
				slog.String("type", "register"),
				slog.String("discord_id", userID.String()),
				slog.Any("error", err))
		}
	}
}

// take claims a pending confirmation for the pressing user. Only the member
// who started the unregister may resolve it.
func (h *RegisterHandler) take(token string, userID snowflake.ID) (*pendingUnregister, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.pending[token]
	if !ok || p.invokerID != userID {
		return nil, false
	}
	p.timer.Stop()
	delete(h.pending, token)
	return p, true
}

func (h *RegisterHandler) expire(token string) {
	h.mu.Lock()
	p, ok := h.pending[token]
	delete(h.pending, token)
	h.mu.Unlock()
	if !ok {
		return
	}

	if _, err := h.b.Client.Rest().UpdateMessage(p.channelID, p.messageID, discord.MessageUpdate{
		Content:    strPtr("Unregister confirmation timed out and no changes were made."),
		Components: &[]discord.ContainerComponent{},
	}); err != nil {
		slog.Warn("Failed to expire unregister confirmation",
			slog.String("type", "register"),
			slog.Any("error", err))
	}
}

func (h *RegisterHandler) refuse(e *events.MessageCreate, reason string) {
	h.react(e, "❌")
	h.reply(e, reason)
}

func (h *RegisterHandler) react(e *events.MessageCreate, emoji string) {
	if err := e.Client().Rest().AddReaction(e.ChannelID, e.MessageID, emoji); err != nil {
		slog.Warn("Failed to react to command message",
			slog.String("type", "register"),
			slog.Any("error", err))
	}
}

func (h *RegisterHandler) reply(e *events.MessageCreate, content string) {
	if _, err := e.Client().Rest().CreateMessage(e.ChannelID, discord.MessageCreate{
		Content:          content,
		MessageReference: &discord.MessageReference{MessageID: &e.MessageID},
	}); err != nil {
		slog.Warn("Failed to reply to command message",
			slog.String("type", "register"),
			slog.Any("error", err))
	}
}

func (h *RegisterHandler) replyEmbed(e *events.MessageCreate, embed discord.Embed) {
	if _, err := e.Client().Rest().CreateMessage(e.ChannelID, discord.MessageCreate{
		Embeds:           []discord.Embed{embed},
		MessageReference: &discord.MessageReference{MessageID: &e.MessageID},
	}); err != nil {
		slog.Warn("Failed to reply to command message",
			slog.String("type", "register"),
			slog.Any("error", err))
	}
}

func strPtr(s string) *string {
	return &s
}
