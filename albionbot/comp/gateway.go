package comp

import (
	"context"
	"errors"
	"net/http"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

// ErrMessageNotFound signals that a referenced message no longer exists
// (deleted externally). The service treats it as a projection failure, not
// an operation failure.
var ErrMessageNotFound = errors.New("message not found")

// ChatGateway is the slice of the chat platform the comp core needs: plain
// text in, stable message/thread references out. Keeping it narrow makes the
// service testable without a gateway connection.
type ChatGateway interface {
	SendMessage(ctx context.Context, channelID, content string) (messageID string, err error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
	Reply(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	CreateThread(ctx context.Context, channelID, messageID, name string) (threadID string, err error)
}

type discordGateway struct {
	client bot.Client
}

// NewDiscordGateway adapts a disgo client to the ChatGateway contract.
func NewDiscordGateway(client bot.Client) ChatGateway {
	return &discordGateway{client: client}
}

func (g *discordGateway) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := g.client.Rest().CreateMessage(snowflake.MustParse(channelID),
		discord.MessageCreate{Content: content}, rest.WithCtx(ctx))
	if err != nil {
		return "", mapRestError(err)
	}
	return msg.ID.String(), nil
}

func (g *discordGateway) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	_, err := g.client.Rest().UpdateMessage(snowflake.MustParse(channelID), snowflake.MustParse(messageID),
		discord.MessageUpdate{Content: &content}, rest.WithCtx(ctx))
	return mapRestError(err)
}

func (g *discordGateway) Reply(ctx context.Context, channelID, messageID, content string) error {
	_, err := g.client.Rest().CreateMessage(snowflake.MustParse(channelID),
		discord.MessageCreate{
			Content:          content,
			MessageReference: &discord.MessageReference{MessageID: ref(snowflake.MustParse(messageID))},
		}, rest.WithCtx(ctx))
	return mapRestError(err)
}

func (g *discordGateway) React(ctx context.Context, channelID, messageID, emoji string) error {
	return mapRestError(g.client.Rest().AddReaction(snowflake.MustParse(channelID),
		snowflake.MustParse(messageID), emoji, rest.WithCtx(ctx)))
}

func (g *discordGateway) CreateThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	thread, err := g.client.Rest().CreateThreadFromMessage(snowflake.MustParse(channelID),
		snowflake.MustParse(messageID),
		discord.ThreadCreateFromMessage{Name: name}, rest.WithCtx(ctx))
	if err != nil {
		return "", mapRestError(err)
	}
	return thread.ID().String(), nil
}

func mapRestError(err error) error {
	if err == nil {
		return nil
	}
	var restErr rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound {
		return ErrMessageNotFound
	}
	return err
}

func ref[T any](v T) *T {
	return &v
}
