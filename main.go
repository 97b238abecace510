package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"

	"github.com/highland-brotherhood/albion-bot/albionbot"
	"github.com/highland-brotherhood/albion-bot/albionbot/albion"
	"github.com/highland-brotherhood/albion-bot/albionbot/commands"
	"github.com/highland-brotherhood/albion-bot/albionbot/comp"
	"github.com/highland-brotherhood/albion-bot/albionbot/components"
	"github.com/highland-brotherhood/albion-bot/albionbot/database"
	"github.com/highland-brotherhood/albion-bot/albionbot/database/repositories"
	"github.com/highland-brotherhood/albion-bot/albionbot/guides"
	"github.com/highland-brotherhood/albion-bot/albionbot/handlers"
	"github.com/highland-brotherhood/albion-bot/albionbot/logger"
	"github.com/highland-brotherhood/albion-bot/albionbot/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting Albion Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := albionbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	defer db.Close()

	b := albionbot.New(*cfg, version, commit)
	b.DB = db

	b.CompRepository = repositories.NewCompRepository(db.BunDB())
	b.RegistrationRepository = repositories.NewRegistrationRepository(db.BunDB())
	b.GuideStatRepository = repositories.NewGuideStatRepository(db.BunDB())

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	b.CompRepository.StartCleanupRoutine(cleanupCtx)

	albionClient, err := albion.NewClient(cfg.Albion.BaseURL)
	if err != nil {
		slog.Error("Failed to initialize gameinfo client", slog.Any("error", err))
		os.Exit(-1)
	}
	b.AlbionClient = albionClient
	b.RegistrationService = services.NewRegistrationService(b.RegistrationRepository, b.AlbionClient)

	guideStore, err := guides.NewStore(
		cfg.Spaces.Key,
		cfg.Spaces.Secret,
		cfg.Spaces.Region,
		cfg.Spaces.Bucket,
		cfg.Spaces.GuideRoot,
	)
	if err != nil {
		slog.Error("Failed to initialize guide storage", slog.Any("error", err))
		os.Exit(-1)
	}
	b.GuideStore = guideStore

	preloadCtx, preloadCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := guideStore.Preload(preloadCtx); err != nil {
		// Guides are a convenience; the bot still runs without them.
		slog.Error("Failed to preload weapon guides", slog.Any("error", err))
	}
	preloadCancel()

	h := handler.New()

	// Comp sign-ups
	h.Command("/comp/create", handlers.WrapWithLogging("comp create", commands.CompCreateHandler(b)))
	h.Command("/comp/edit", handlers.WrapWithLogging("comp edit", commands.CompEditHandler(b)))
	h.Command("/comp/assign", handlers.WrapWithLogging("comp assign", commands.CompAssignHandler(b)))
	h.Command("/comp/unassign", handlers.WrapWithLogging("comp unassign", commands.CompUnassignHandler(b)))
	h.Command("/comp/cancel", handlers.WrapWithLogging("comp cancel", commands.CompCancelHandler(b)))
	h.Modal("/comp-create", handlers.WrapModalWithLogging("comp create", commands.CompCreateModalHandler(b)))
	h.Modal("/comp-edit/{comp_id}", handlers.WrapModalWithLogging("comp edit", commands.CompEditModalHandler(b)))

	// Guides
	h.Command("/weapons", handlers.WrapWithLogging("weapons", commands.WeaponsHandler(b)))
	h.Command("/roles", handlers.WrapWithLogging("roles", commands.RolesHandler(b)))
	h.Component("/guide/{category}/{weapon}", handlers.WrapComponentWithLogging("guide", components.GuideButtonHandler(b)))
	h.Component("/ask/{weapon}", handlers.WrapComponentWithLogging("ask", components.AskButtonHandler(b)))
	h.Component("/roles-tree/{path}", handlers.WrapComponentWithLogging("roles-tree", components.RolesTreeHandler(b)))
	h.Command("/guidestats/weapons", handlers.WrapWithLogging("guidestats weapons", commands.GuideStatsWeaponsHandler(b)))
	h.Command("/guidestats/readers", handlers.WrapWithLogging("guidestats readers", commands.GuideStatsReadersHandler(b)))
	h.Command("/guidestats/me", handlers.WrapWithLogging("guidestats me", commands.GuideStatsMeHandler(b)))

	// Misc
	h.Command("/bandit", handlers.WrapWithLogging("bandit", commands.BanditHandler(b)))

	registerHandler := handlers.NewRegisterHandler(b)
	h.Component("/unregister-confirm/{token}", handlers.WrapComponentWithLogging("unregister confirm", registerHandler.ConfirmUnregister))
	h.Component("/unregister-cancel/{token}", handlers.WrapComponentWithLogging("unregister cancel", registerHandler.CancelUnregister))

	ticketHandler := handlers.NewTicketHandler(b)

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		handlers.MessageHandler(b, registerHandler),
		handlers.MessageDeleteHandler(b),
		handlers.MemberLeaveHandler(b, registerHandler),
		bot.NewListenerFunc(ticketHandler.OnChannelCreate),
		bot.NewListenerFunc(ticketHandler.OnTicketMessage),
	); err != nil {
		logger.SystemError("Failed to setup bot", err,
			slog.String("error_details", fmt.Sprintf("%+v", err)))
		os.Exit(-1)
	}

	groupMention := ""
	if cfg.Comp.GroupRole != 0 {
		groupMention = fmt.Sprintf("<@&%s>", cfg.Comp.GroupRole)
	}
	b.CompService = comp.NewService(b.CompRepository, comp.NewDiscordGateway(b.Client), groupMention)

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		logger.System("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			logger.SystemError("Failed to sync commands", err)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		logger.SystemError("Failed to open gateway", err)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
