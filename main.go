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

	"github.com/Re4LH/discord-bot/availbot"
	"github.com/Re4LH/discord-bot/availbot/commands"
	"github.com/Re4LH/discord-bot/availbot/database"
	"github.com/Re4LH/discord-bot/availbot/database/repositories"
	"github.com/Re4LH/discord-bot/availbot/logger"
	"github.com/Re4LH/discord-bot/availbot/poll"
	"github.com/Re4LH/discord-bot/availbot/scheduler"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting availability poll bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := availbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
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

	b := availbot.New(*cfg, version, commit)
	b.DB = db
	b.ConfigRepository = repositories.NewConfigRepository(db.BunDB())
	b.PollRepository = repositories.NewPollRepository(db.BunDB())
	b.VoteRepository = repositories.NewVoteRepository(db.BunDB())
	b.ActivePolls = poll.NewActivePolls()

	h := handler.New()
	pollHandler := commands.NewPollHandler(b)
	pollHandler.Register(h)

	if err = b.SetupBot(h,
		bot.NewListenerFunc(b.OnReady),
		bot.NewListenerFunc(b.OnGuildJoin),
		bot.NewListenerFunc(b.OnGuildLeave),
		bot.NewListenerFunc(b.OnReactionAdd),
		bot.NewListenerFunc(b.OnReactionRemove),
	); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	// The rest-backed pieces need the client, so they come after
	// SetupBot.
	b.Channels = availbot.NewChannelClient(b.Client)
	b.Publisher = poll.NewPublisher(b.Channels, b.ConfigRepository, b.PollRepository, b.ActivePolls)
	b.Reconciler = poll.NewReconciler(b.Channels, b.ActivePolls, b.VoteRepository)

	b.Scheduler = scheduler.New(func(guildID snowflake.ID) {
		pubCtx, pubCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer pubCancel()
		if err := b.Publisher.Publish(pubCtx, guildID); err != nil {
			slog.Error("Scheduled poll failed",
				slog.String("type", "poll"),
				slog.String("guild_id", guildID.String()),
				slog.Any("error", err))
		}
	})
	defer b.Scheduler.Stop()

	if err := b.ActivePolls.RestoreActive(ctx, b.ConfigRepository, b.PollRepository); err != nil {
		logger.LogError("Failed to restore active polls", err)
	}

	enabled, err := b.ConfigRepository.ListEnabled(ctx)
	if err != nil {
		slog.Error("Failed to list enabled guilds", slog.Any("error", err))
		os.Exit(-1)
	}
	for _, guildCfg := range enabled {
		guildID, err := snowflake.Parse(guildCfg.GuildID)
		if err != nil {
			continue
		}
		if err := b.Scheduler.Schedule(guildID, guildCfg.PollHour, guildCfg.PollMinute, guildCfg.Timezone); err != nil {
			slog.Error("Failed to schedule guild",
				slog.String("guild_id", guildCfg.GuildID),
				slog.Any("error", err))
		}
	}
	slog.Info("Daily polls scheduled",
		slog.Int("guilds", b.Scheduler.ScheduledCount()))

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	// Catch up on reactions made while we were down.
	go refreshRestoredPolls(b)

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down bot...")
}

func refreshRestoredPolls(b *availbot.Bot) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	tracked, err := b.ConfigRepository.ListWithHistory(ctx)
	if err != nil {
		logger.LogError("Failed to list guilds for poll refresh", err)
		return
	}

	for _, guildCfg := range tracked {
		for _, raw := range guildCfg.PollHistory {
			messageID, err := snowflake.Parse(raw)
			if err != nil {
				continue
			}
			if err := b.Reconciler.Refresh(ctx, messageID); err != nil {
				slog.Warn("Failed to refresh restored poll",
					slog.String("message_id", raw),
					slog.Any("error", err))
			}
		}
	}
}
