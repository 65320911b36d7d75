package poll

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/Re4LH/discord-bot/availbot/database/repositories"
	"github.com/disgoorg/snowflake/v2"
)

// ActivePoll is the in-memory handle for a poll whose Discord message
// is still being reconciled against reactions.
type ActivePoll struct {
	PollID    int64
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	MessageID snowflake.ID
	Options   []models.PollOption
	DateLabel string
	IsTest    bool
}

// ActivePolls indexes live polls by message ID. It is an index only;
// the database rows stay authoritative and the index is rebuilt from
// them on startup.
type ActivePolls struct {
	mu        sync.RWMutex
	byMessage map[snowflake.ID]*ActivePoll
}

func NewActivePolls() *ActivePolls {
	return &ActivePolls{byMessage: make(map[snowflake.ID]*ActivePoll)}
}

func (a *ActivePolls) Add(p *ActivePoll) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byMessage[p.MessageID] = p
}

func (a *ActivePolls) Get(messageID snowflake.ID) (*ActivePoll, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.byMessage[messageID]
	return p, ok
}

func (a *ActivePolls) Remove(messageID snowflake.ID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.byMessage, messageID)
}

func (a *ActivePolls) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.byMessage)
}

// RestoreActive rebuilds the index from persisted state after a
// restart. Every guild's recorded poll history is resolved back to
// poll rows; history entries without a row are skipped. A disabled
// schedule does not stop live polls from being tallied, so the scan
// covers every guild with history.
func (a *ActivePolls) RestoreActive(ctx context.Context, configs repositories.ConfigRepository, polls repositories.PollRepository) error {
	tracked, err := configs.ListWithHistory(ctx)
	if err != nil {
		return err
	}

	var messageIDs []string
	for _, cfg := range tracked {
		messageIDs = append(messageIDs, cfg.PollHistory...)
	}

	rows, err := polls.ListLive(ctx, messageIDs)
	if err != nil {
		return err
	}

	restored := 0
	for _, row := range rows {
		guildID, err1 := snowflake.Parse(row.GuildID)
		channelID, err2 := snowflake.Parse(row.ChannelID)
		messageID, err3 := snowflake.Parse(row.MessageID)
		if err1 != nil || err2 != nil || err3 != nil {
			slog.Warn("Skipping poll with malformed IDs",
				slog.String("type", "poll"),
				slog.Int64("poll_id", row.ID))
			continue
		}
		a.Add(&ActivePoll{
			PollID:    row.ID,
			GuildID:   guildID,
			ChannelID: channelID,
			MessageID: messageID,
			Options:   row.Options,
			DateLabel: row.DateLabel,
			IsTest:    row.IsTest,
		})
		restored++
	}

	slog.Info("Restored active polls",
		slog.String("type", "poll"),
		slog.Int("count", restored))
	return nil
}
