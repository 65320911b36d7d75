package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/Re4LH/discord-bot/availbot/database/models"
	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"
)

const configCacheSize = 1024

var ErrConfigNotFound = errors.New("guild config not found")

type ConfigRepository interface {
	// Get returns the guild's config, creating and persisting the
	// default one on first access. The returned struct is the
	// caller's own copy; mutate it freely and Save to persist.
	Get(ctx context.Context, guildID string) (*models.GuildConfig, error)
	Save(ctx context.Context, cfg *models.GuildConfig) error
	Remove(ctx context.Context, guildID string) error
	ListEnabled(ctx context.Context) ([]*models.GuildConfig, error)
	// ListWithHistory returns every config that still tracks live
	// poll messages, enabled or not.
	ListWithHistory(ctx context.Context) ([]*models.GuildConfig, error)
	Count(ctx context.Context) (int, error)
}

type configRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewConfigRepository(db *bun.DB) ConfigRepository {
	cache, _ := lru.New(configCacheSize)
	return &configRepository{db: db, cache: cache}
}

func (r *configRepository) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	// The cache holds the canonical copy; hand out clones so
	// concurrent callers never share a mutable struct.
	if cached, ok := r.cache.Get(guildID); ok {
		if cfg, ok := cached.(*models.GuildConfig); ok {
			return cfg.Clone(), nil
		}
	}

	cfg := new(models.GuildConfig)
	err := r.db.NewSelect().
		Model(cfg).
		Where("guild_id = ?", guildID).
		Scan(ctx)

	if errors.Is(err, sql.ErrNoRows) {
		cfg = models.NewGuildConfig(guildID)
		if _, err := r.db.NewInsert().
			Model(cfg).
			On("CONFLICT (guild_id) DO NOTHING").
			Exec(ctx); err != nil {
			return nil, err
		}
		slog.Debug("Created default guild config",
			slog.String("type", "db"),
			slog.String("guild_id", guildID))
	} else if err != nil {
		slog.Error("Database error when getting guild config",
			slog.String("type", "db"),
			slog.String("operation", "Get"),
			slog.String("guild_id", guildID),
			slog.String("error", err.Error()))
		return nil, err
	}

	cfg.Normalize()
	r.cache.Add(guildID, cfg.Clone())
	return cfg, nil
}

func (r *configRepository) Save(ctx context.Context, cfg *models.GuildConfig) error {
	cfg.Normalize()
	cfg.UpdatedAt = time.Now()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = cfg.UpdatedAt
	}

	_, err := r.db.NewInsert().
		Model(cfg).
		On("CONFLICT (guild_id) DO UPDATE").
		Set("enabled = EXCLUDED.enabled").
		Set("channel_id = EXCLUDED.channel_id").
		Set("poll_hour = EXCLUDED.poll_hour").
		Set("poll_minute = EXCLUDED.poll_minute").
		Set("timezone = EXCLUDED.timezone").
		Set("options = EXCLUDED.options").
		Set("poll_history = EXCLUDED.poll_history").
		Set("schema_version = EXCLUDED.schema_version").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return err
	}

	r.cache.Add(cfg.GuildID, cfg.Clone())
	return nil
}

func (r *configRepository) Remove(ctx context.Context, guildID string) error {
	r.cache.Remove(guildID)
	_, err := r.db.NewDelete().
		Model((*models.GuildConfig)(nil)).
		Where("guild_id = ?", guildID).
		Exec(ctx)
	return err
}

func (r *configRepository) ListEnabled(ctx context.Context) ([]*models.GuildConfig, error) {
	var configs []*models.GuildConfig
	err := r.db.NewSelect().
		Model(&configs).
		Where("enabled = true").
		Where("channel_id != ''").
		Order("guild_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		cfg.Normalize()
	}
	return configs, nil
}

func (r *configRepository) ListWithHistory(ctx context.Context) ([]*models.GuildConfig, error) {
	var configs []*models.GuildConfig
	err := r.db.NewSelect().
		Model(&configs).
		Where("poll_history IS NOT NULL").
		Where("jsonb_array_length(poll_history) > 0").
		Order("guild_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	for _, cfg := range configs {
		cfg.Normalize()
	}
	return configs, nil
}

func (r *configRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.GuildConfig)(nil)).
		Count(ctx)
}
