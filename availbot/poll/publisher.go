package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/Re4LH/discord-bot/availbot/database/repositories"
	"github.com/disgoorg/snowflake/v2"
)

// Publisher posts poll messages and enforces the live-message
// retention window.
type Publisher struct {
	client  ChannelClient
	configs repositories.ConfigRepository
	polls   repositories.PollRepository
	active  *ActivePolls
	now     func() time.Time
}

func NewPublisher(client ChannelClient, configs repositories.ConfigRepository, polls repositories.PollRepository, active *ActivePolls) *Publisher {
	return &Publisher{
		client:  client,
		configs: configs,
		polls:   polls,
		active:  active,
		now:     time.Now,
	}
}

// Publish posts the daily poll to the guild's configured channel. The
// send is the commit point: a permission failure there aborts with no
// retention, persistence or index changes. Reaction seeding after the
// send is best effort.
func (p *Publisher) Publish(ctx context.Context, guildID snowflake.ID) error {
	return p.publish(ctx, guildID, snowflake.ID(0), false)
}

// PublishTest posts a yellow test poll to an explicit channel. Test
// polls are tracked and tallied like real ones but never enter the
// retention history.
func (p *Publisher) PublishTest(ctx context.Context, guildID, channelID snowflake.ID) error {
	return p.publish(ctx, guildID, channelID, true)
}

func (p *Publisher) publish(ctx context.Context, guildID, channelID snowflake.ID, isTest bool) error {
	cfg, err := p.configs.Get(ctx, guildID.String())
	if err != nil {
		return fmt.Errorf("loading guild config: %w", err)
	}

	if !isTest {
		if cfg.ChannelID == "" {
			return ErrNoChannelConfigured
		}
		channelID, err = snowflake.Parse(cfg.ChannelID)
		if err != nil {
			return fmt.Errorf("malformed channel id %q: %w", cfg.ChannelID, err)
		}
	}

	// Snapshot the options now; later config edits must not change
	// what an already-posted poll means.
	options := snapshotOptions(cfg.Options)
	dateLabel := DateLabel(p.now())

	if !isTest {
		p.enforceRetention(ctx, cfg, channelID)
	}

	embed := BuildPollEmbed(options, dateLabel, isTest, p.client.GuildName(guildID), nil)
	messageID, err := p.client.SendMessage(ctx, channelID, embed)
	if err != nil {
		return fmt.Errorf("posting poll: %w", err)
	}

	for _, opt := range options {
		if err := p.client.AddReaction(ctx, channelID, messageID, opt.Emoji); err != nil {
			slog.Warn("Failed to seed reaction",
				slog.String("type", "poll"),
				slog.String("emoji", opt.Emoji),
				slog.String("message_id", messageID.String()),
				slog.Any("error", err))
		}
	}

	row := &models.Poll{
		GuildID:   guildID.String(),
		ChannelID: channelID.String(),
		MessageID: messageID.String(),
		DateLabel: dateLabel,
		IsTest:    isTest,
		Options:   options,
		CreatedAt: p.now(),
	}
	pruned, err := p.polls.Create(ctx, row)
	if err != nil {
		return fmt.Errorf("persisting poll: %w", err)
	}

	// A pruned row may belong to a message that is still live (test
	// polls count against row retention but not history). Its handles
	// go too, or votes would reference a row that no longer exists.
	historyChanged := p.evictPruned(cfg, pruned)

	if !isTest {
		cfg.PollHistory = append(cfg.PollHistory, messageID.String())
		historyChanged = true
	}
	if historyChanged {
		if err := p.configs.Save(ctx, cfg); err != nil {
			return fmt.Errorf("saving poll history: %w", err)
		}
	}

	p.active.Add(&ActivePoll{
		PollID:    row.ID,
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: messageID,
		Options:   options,
		DateLabel: dateLabel,
		IsTest:    isTest,
	})

	slog.Info("Posted poll",
		slog.String("type", "poll"),
		slog.String("guild_id", guildID.String()),
		slog.String("message_id", messageID.String()),
		slog.Bool("test", isTest))
	return nil
}

// evictPruned drops the index entries and history handles of polls
// whose rows just left storage. Reports whether the history changed.
func (p *Publisher) evictPruned(cfg *models.GuildConfig, pruned []string) bool {
	changed := false
	for _, raw := range pruned {
		if messageID, err := snowflake.Parse(raw); err == nil {
			p.active.Remove(messageID)
		}
		for i, entry := range cfg.PollHistory {
			if entry == raw {
				cfg.PollHistory = append(cfg.PollHistory[:i], cfg.PollHistory[i+1:]...)
				changed = true
				break
			}
		}
	}
	return changed
}

// enforceRetention deletes the oldest live poll message once the
// window is full. A message already gone on Discord's side is fine.
func (p *Publisher) enforceRetention(ctx context.Context, cfg *models.GuildConfig, channelID snowflake.ID) {
	for len(cfg.PollHistory) >= config.LiveMessageRetention {
		oldest := cfg.PollHistory[0]
		cfg.PollHistory = cfg.PollHistory[1:]

		messageID, err := snowflake.Parse(oldest)
		if err != nil {
			continue
		}
		if err := p.client.DeleteMessage(ctx, channelID, messageID); err != nil && !errors.Is(err, ErrMessageNotFound) {
			slog.Warn("Failed to delete old poll message",
				slog.String("type", "poll"),
				slog.String("message_id", oldest),
				slog.Any("error", err))
		}
		p.active.Remove(messageID)
	}
}

// snapshotOptions pins each configured label to the fixed emoji
// palette by position.
func snapshotOptions(opts []models.PollOption) []models.PollOption {
	if len(opts) == 0 {
		opts = models.DefaultPollOptions()
	}
	if len(opts) > config.MaxPollOptions {
		opts = opts[:config.MaxPollOptions]
	}
	out := make([]models.PollOption, len(opts))
	for i, opt := range opts {
		out[i] = models.PollOption{Emoji: config.PollEmojis[i], Label: opt.Label}
	}
	return out
}
