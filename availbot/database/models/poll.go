package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Poll is one published voting instance tied to a single message. The option
// list is copied into the row at publish time, so later config edits never
// alter past polls.
type Poll struct {
	bun.BaseModel `bun:"table:polls,alias:p"`

	ID        int64        `bun:"id,pk,autoincrement"`
	GuildID   string       `bun:"guild_id,notnull"`
	ChannelID string       `bun:"channel_id,notnull"`
	MessageID string       `bun:"message_id,notnull,unique"`
	DateLabel string       `bun:"poll_date,notnull"`
	IsTest    bool         `bun:"is_test,notnull,default:false"`
	Options   []PollOption `bun:"options,type:jsonb"`
	CreatedAt time.Time    `bun:"created_at,notnull,default:current_timestamp"`
}

// HasEmoji reports whether emoji is part of the poll's option snapshot.
func (p *Poll) HasEmoji(emoji string) bool {
	for _, opt := range p.Options {
		if opt.Emoji == emoji {
			return true
		}
	}
	return false
}
