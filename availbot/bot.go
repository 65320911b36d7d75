package availbot

import (
	"context"
	"log/slog"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database"
	"github.com/Re4LH/discord-bot/availbot/database/repositories"
	"github.com/Re4LH/discord-bot/availbot/poll"
	"github.com/Re4LH/discord-bot/availbot/scheduler"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/cache"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/paginator"
	"github.com/disgoorg/snowflake/v2"
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
	Cfg              Config
	Client           bot.Client
	Paginator        *paginator.Manager
	Version          string
	Commit           string
	DB               *database.DB
	ConfigRepository repositories.ConfigRepository
	PollRepository   repositories.PollRepository
	VoteRepository   repositories.VoteRepository
	Scheduler        *scheduler.Scheduler
	Publisher        *poll.Publisher
	Reconciler       *poll.Reconciler
	ActivePolls      *poll.ActivePolls
	Channels         poll.ChannelClient
}

func (b *Bot) SetupBot(listeners ...bot.EventListener) error {
	client, err := disgo.New(b.Cfg.Bot.Token,
		bot.WithGatewayConfigOpts(gateway.WithIntents(gateway.IntentGuilds, gateway.IntentGuildMessageReactions)),
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

func (b *Bot) OnReady(e *events.Ready) {
	slog.Info("Availability bot is now ready",
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))

	// Our own reactions seed the poll options and must never count
	// as votes.
	b.Reconciler.SetBotUser(e.User.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Client.SetPresence(ctx,
		gateway.WithWatchingActivity("кой може да играе утре"),
		gateway.WithOnlineStatus(discord.OnlineStatusOnline)); err != nil {
		slog.Error("Failed to set presence", slog.Any("error", err))
	}
}

// OnGuildJoin seeds a default config so the later slash commands
// always find one.
func (b *Bot) OnGuildJoin(e *events.GuildJoin) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := b.ConfigRepository.Get(ctx, e.Guild.ID.String()); err != nil {
		slog.Error("Failed to init config for new guild",
			slog.String("guild_id", e.Guild.ID.String()),
			slog.Any("error", err))
		return
	}

	slog.Info("Joined guild",
		slog.String("guild_id", e.Guild.ID.String()),
		slog.String("name", e.Guild.Name))

	b.sendWelcome(ctx, e.Guild.ID)
}

// sendWelcome posts setup instructions to the first text channel that
// accepts the message. Failing silently is fine; the admin can still
// find /poll setup on their own.
func (b *Bot) sendWelcome(ctx context.Context, guildID snowflake.ID) {
	channels, err := b.Client.Rest().GetGuildChannels(guildID, rest.WithCtx(ctx))
	if err != nil {
		return
	}

	embed := discord.NewEmbedBuilder().
		SetTitle("🎮 Ежедневни анкети за наличност").
		SetDescription("Благодаря, че ме добавихте! Използвайте `/poll setup`, за да изберете канал и час, и `/poll enable`, за да пуснете ежедневните анкети.").
		SetColor(config.InfoColor).
		Build()

	for _, channel := range channels {
		if channel.Type() != discord.ChannelTypeGuildText {
			continue
		}
		_, err := b.Client.Rest().CreateMessage(channel.ID(), discord.MessageCreate{
			Embeds: []discord.Embed{embed},
		}, rest.WithCtx(ctx))
		if err == nil {
			return
		}
	}
}

func (b *Bot) OnGuildLeave(e *events.GuildLeave) {
	b.Scheduler.Unschedule(e.Guild.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.ConfigRepository.Remove(ctx, e.Guild.ID.String()); err != nil {
		slog.Error("Failed to remove config for departed guild",
			slog.String("guild_id", e.Guild.ID.String()),
			slog.Any("error", err))
	}
}

func (b *Bot) OnReactionAdd(e *events.GuildMessageReactionAdd) {
	b.handleReaction(e.MessageID, e.UserID)
}

func (b *Bot) OnReactionRemove(e *events.GuildMessageReactionRemove) {
	b.handleReaction(e.MessageID, e.UserID)
}

func (b *Bot) handleReaction(messageID, userID snowflake.ID) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := b.Reconciler.HandleReaction(ctx, messageID, userID); err != nil {
		slog.Error("Failed to reconcile reaction",
			slog.String("type", "poll"),
			slog.String("message_id", messageID.String()),
			slog.Any("error", err))
	}
}

// ApplySchedule syncs the scheduler with the guild's current config.
func (b *Bot) ApplySchedule(guildID snowflake.ID, enabled bool, hour, minute int, timezone string) error {
	if !enabled {
		b.Scheduler.Unschedule(guildID)
		return nil
	}
	return b.Scheduler.Schedule(guildID, hour, minute, timezone)
}
