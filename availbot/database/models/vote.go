package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Vote is one user's current single choice on a poll. At most one row exists
// per (poll, user); a changed choice overwrites the row in place.
type Vote struct {
	bun.BaseModel `bun:"table:votes,alias:v"`

	ID          int64     `bun:"id,pk,autoincrement"`
	PollID      int64     `bun:"poll_id,notnull"`
	UserID      string    `bun:"user_id,notnull"`
	Username    string    `bun:"username,notnull"`
	DisplayName string    `bun:"display_name,notnull"`
	Emoji       string    `bun:"emoji,notnull"`
	VotedAt     time.Time `bun:"voted_at,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}
