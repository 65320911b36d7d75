package models

import (
	"time"

	"github.com/uptrace/bun"
)

// ConfigSchemaVersion is stamped onto every row so future layout changes can
// migrate configs in place.
const ConfigSchemaVersion = 1

// PollOption is one emoji/label pair of a poll. GuildConfig holds the
// template list; Poll holds the snapshot copied at publish time.
type PollOption struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
}

type GuildConfig struct {
	bun.BaseModel `bun:"table:guild_configs,alias:gc"`

	ID            int64        `bun:"id,pk,autoincrement"`
	GuildID       string       `bun:"guild_id,notnull,unique"`
	Enabled       bool         `bun:"enabled,notnull,default:false"`
	ChannelID     string       `bun:"channel_id"`
	PollHour      int          `bun:"poll_hour,notnull,default:8"`
	PollMinute    int          `bun:"poll_minute,notnull,default:0"`
	Timezone      string       `bun:"timezone,notnull,default:'UTC'"`
	Options       []PollOption `bun:"options,type:jsonb"`
	PollHistory   []string     `bun:"poll_history,type:jsonb"`
	SchemaVersion int          `bun:"schema_version,notnull,default:1"`
	CreatedAt     time.Time    `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time    `bun:"updated_at,notnull,default:current_timestamp"`
}

// DefaultPollOptions are the built-in availability options every new guild
// starts with. Labels match the bot's display language.
func DefaultPollOptions() []PollOption {
	return []PollOption{
		{Emoji: "✅", Label: "Свободен цял ден"},
		{Emoji: "🌅", Label: "Свободен сутрин (9:00 - 12:00)"},
		{Emoji: "☀️", Label: "Свободен следобед (12:00 - 18:00)"},
		{Emoji: "🌙", Label: "Свободен вечер (18:00 - 23:00)"},
		{Emoji: "🌃", Label: "Свободен късно вечер (23:00+)"},
		{Emoji: "🤔", Label: "Не съм сигурен"},
		{Emoji: "❌", Label: "Не съм свободен"},
	}
}

// NewGuildConfig returns the default config for a guild on first contact:
// disabled, no channel, 08:00 UTC, the built-in option list.
func NewGuildConfig(guildID string) *GuildConfig {
	now := time.Now().UTC()
	return &GuildConfig{
		GuildID:       guildID,
		Enabled:       false,
		ChannelID:     "",
		PollHour:      8,
		PollMinute:    0,
		Timezone:      "UTC",
		Options:       DefaultPollOptions(),
		PollHistory:   []string{},
		SchemaVersion: ConfigSchemaVersion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// Clone returns an independent copy. Callers read-modify-write their
// own struct; sharing one across goroutines is never safe.
func (c *GuildConfig) Clone() *GuildConfig {
	out := *c
	out.Options = append([]PollOption(nil), c.Options...)
	out.PollHistory = append([]string(nil), c.PollHistory...)
	return &out
}

// Normalize repairs a loaded config: clamps the schedule into range, restores
// defaulted fields and deduplicates option emojis, keeping first occurrence.
func (c *GuildConfig) Normalize() {
	if c.PollHour < 0 || c.PollHour > 23 {
		c.PollHour = 8
	}
	if c.PollMinute < 0 || c.PollMinute > 59 {
		c.PollMinute = 0
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil || c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if len(c.Options) == 0 {
		c.Options = DefaultPollOptions()
	}
	seen := make(map[string]bool, len(c.Options))
	opts := c.Options[:0]
	for _, opt := range c.Options {
		if seen[opt.Emoji] {
			continue
		}
		seen[opt.Emoji] = true
		opts = append(opts, opt)
	}
	c.Options = opts
	if c.PollHistory == nil {
		c.PollHistory = []string{}
	}
	if c.SchemaVersion == 0 {
		c.SchemaVersion = ConfigSchemaVersion
	}
}
