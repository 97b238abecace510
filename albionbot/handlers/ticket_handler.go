package handlers

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/config"
)

// TicketHandler greets new ticket channels with registration instructions.
// The ticket bot that creates the channel posts a welcome mentioning the
// opener, so we wait briefly for that message to address the right member; if
// it never comes the greeting goes out without a mention.
type TicketHandler struct {
	b *albionbot.Bot

	mu      sync.Mutex
	waiting map[snowflake.ID]chan snowflake.ID
}

func NewTicketHandler(b *albionbot.Bot) *TicketHandler {
	return &TicketHandler{
		b:       b,
		waiting: make(map[snowflake.ID]chan snowflake.ID),
	}
}

func (h *TicketHandler) OnChannelCreate(e *events.GuildChannelCreate) {
	category := h.b.Cfg.Register.TicketCategory
	if category == 0 {
		return
	}
	parentID := e.Channel.ParentID()
	if parentID == nil || *parentID != category {
		return
	}

	opener := make(chan snowflake.ID, 1)
	h.mu.Lock()
	h.waiting[e.ChannelID] = opener
	h.mu.Unlock()

	go h.greet(e.ChannelID, opener)
}

// OnTicketMessage resolves the ticket opener from the first mention posted in
// a channel we are waiting on.
func (h *TicketHandler) OnTicketMessage(e *events.MessageCreate) {
	if len(e.Message.Mentions) == 0 {
		return
	}
	h.mu.Lock()
	opener, ok := h.waiting[e.ChannelID]
	h.mu.Unlock()
	if !ok {
		return
	}
	select {
	case opener <- e.Message.Mentions[0].ID:
	default:
	}
}

func (h *TicketHandler) greet(channelID snowflake.ID, opener chan snowflake.ID) {
	defer func() {
		h.mu.Lock()
		delete(h.waiting, channelID)
		h.mu.Unlock()
	}()

	greeting := "Welcome! To get access, tell us who you are in Albion with `!register YourAlbionName`."
	select {
	case userID := <-opener:
		greeting = fmt.Sprintf("Welcome <@%s>! To get access, tell us who you are in Albion with `!register YourAlbionName`.", userID)
	case <-time.After(config.TicketHandshakeWindow):
	}

	if _, err := h.b.Client.Rest().CreateMessage(channelID, discord.MessageCreate{Content: greeting}); err != nil {
		slog.Error("Failed to greet ticket channel",
			slog.String("type", "ticket"),
			slog.String("channel_id", channelID.String()),
			slog.Any("error", err))
	}
}
