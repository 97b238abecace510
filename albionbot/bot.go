package albionbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"

	"github.com/highland-brotherhood/albion-bot/albionbot/albion"
	"github.com/highland-brotherhood/albion-bot/albionbot/comp"
	"github.com/highland-brotherhood/albion-bot/albionbot/database"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
	"github.com/highland-brotherhood/albion-bot/albionbot/guides"
	"github.com/highland-brotherhood/albion-bot/albionbot/services"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:       cfg,
		Paginator: paginator.New(),
		Version:   version,
		Commit:    commit,
	}
}

type Bot struct {
	Cfg       Config
	Client    bot.Client
	Paginator *paginator.Manager
	Version   string
	Commit    string
	DB        *database.DB

	CompRepository         repositories.CompRepository
	RegistrationRepository repositories.RegistrationRepository
	GuideStatRepository    repositories.GuideStatRepository

	CompService         *comp.Service
	RegistrationService *services.RegistrationService
	GuideStore          *guides.Store
	AlbionClient        *albion.Client
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(
			gateway.IntentGuilds,
			gateway.IntentGuildMembers,
			gateway.IntentGuildMessages,
			gateway.IntentMessageContent,
		)),
		bot.WithCacheConfigOpts(cache.WithCaches(cache.FlagGuilds)),
		bot.WithEventListeners(b.Paginator),
		bot.WithEventListeners(listeners...),
	)
	if err != nil {
		return err
	}

	b.Client = client
	return nil
}

func (b *Bot) OnReady(_ *events.Ready) {
	slog.Info("Albion Bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithPlayingActivity("Albion Online"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// IsSuperAdmin reports whether any of the member's roles may manage comps
// they do not organize.
func (b *Bot) IsSuperAdmin(roleIDs []snowflake.ID) bool {
	for _, id := range roleIDs {
		for _, admin := range b.Cfg.Comp.SuperAdminRoles {
			if id == admin {
				return true
			}
		}
	}
	return false
}

// IsRegisterAdmin reports whether any of the member's roles may manage other
// members' registrations.
func (b *Bot) IsRegisterAdmin(roleIDs []snowflake.ID) bool {
	for _, id := range roleIDs {
		for _, admin := range b.Cfg.Register.AdminRoles {
			if id == admin {
				return true
			}
		}
	}
	return false
}
