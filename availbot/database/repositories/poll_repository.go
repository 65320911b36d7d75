package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/uptrace/bun"
)

var ErrPollNotFound = errors.New("poll not found")

type PollRepository interface {
	// Create inserts the poll and prunes rows beyond the per-guild
	// retention, oldest first. It returns the message IDs of the
	// pruned rows so the caller can drop their in-memory handles.
	Create(ctx context.Context, poll *models.Poll) ([]string, error)
	GetByMessageID(ctx context.Context, messageID string) (*models.Poll, error)
	ListByGuild(ctx context.Context, guildID string, limit int) ([]*models.Poll, error)
	// ListLive returns the polls that still have a tracked Discord
	// message, newest first, for rebuilding the in-memory index.
	ListLive(ctx context.Context, messageIDs []string) ([]*models.Poll, error)
	ListAll(ctx context.Context) ([]*models.Poll, error)
	Delete(ctx context.Context, pollID int64) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	DeleteByGuild(ctx context.Context, guildID string) (int, error)
	Count(ctx context.Context) (int, error)
}

type pollRepository struct {
	db *bun.DB
}

func NewPollRepository(db *bun.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) ([]string, error) {
	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now()
	}
	if _, err := r.db.NewInsert().Model(poll).Exec(ctx); err != nil {
		return nil, err
	}
	return r.pruneGuild(ctx, poll.GuildID)
}

// pruneGuild keeps only the newest rows for a guild; votes cascade.
func (r *pollRepository) pruneGuild(ctx context.Context, guildID string) ([]string, error) {
	var stale []*models.Poll
	err := r.db.NewSelect().
		Model(&stale).
		Column("id", "message_id").
		Where("guild_id = ?", guildID).
		Order("created_at DESC").
		Offset(config.PollRowRetention).
		Scan(ctx)
	if err != nil || len(stale) == 0 {
		return nil, err
	}

	ids := make([]int64, len(stale))
	messageIDs := make([]string, len(stale))
	for i, p := range stale {
		ids[i] = p.ID
		messageIDs[i] = p.MessageID
	}

	_, err = r.db.NewDelete().
		Model((*models.Poll)(nil)).
		Where("id IN (?)", bun.In(ids)).
		Exec(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("Pruned stale polls",
		slog.String("type", "db"),
		slog.String("guild_id", guildID),
		slog.Int("count", len(stale)))
	return messageIDs, nil
}

func (r *pollRepository) GetByMessageID(ctx context.Context, messageID string) (*models.Poll, error) {
	poll := new(models.Poll)
	err := r.db.NewSelect().
		Model(poll).
		Where("message_id = ?", messageID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPollNotFound
	}
	if err != nil {
		return nil, err
	}
	return poll, nil
}

func (r *pollRepository) ListByGuild(ctx context.Context, guildID string, limit int) ([]*models.Poll, error) {
	var polls []*models.Poll
	q := r.db.NewSelect().
		Model(&polls).
		Where("guild_id = ?", guildID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *pollRepository) ListLive(ctx context.Context, messageIDs []string) ([]*models.Poll, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}
	var polls []*models.Poll
	err := r.db.NewSelect().
		Model(&polls).
		Where("message_id IN (?)", bun.In(messageIDs)).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *pollRepository) ListAll(ctx context.Context) ([]*models.Poll, error) {
	var polls []*models.Poll
	err := r.db.NewSelect().
		Model(&polls).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return polls, nil
}

func (r *pollRepository) Delete(ctx context.Context, pollID int64) error {
	_, err := r.db.NewDelete().
		Model((*models.Poll)(nil)).
		Where("id = ?", pollID).
		Exec(ctx)
	return err
}

func (r *pollRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.Poll)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *pollRepository) DeleteByGuild(ctx context.Context, guildID string) (int, error) {
	res, err := r.db.NewDelete().
		Model((*models.Poll)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func (r *pollRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.Poll)(nil)).
		Count(ctx)
}
