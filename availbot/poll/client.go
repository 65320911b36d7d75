package poll

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// Reactor is a user who currently holds a reaction on a message.
type Reactor struct {
	ID          snowflake.ID
	Username    string
	DisplayName string
	Bot         bool
}

// ChannelClient is the slice of the Discord API the poll engine needs.
// The production implementation wraps disgo's rest client; tests use a
// stateful fake.
type ChannelClient interface {
	SendMessage(ctx context.Context, channelID snowflake.ID, embed discord.Embed) (snowflake.ID, error)
	EditMessage(ctx context.Context, channelID, messageID snowflake.ID, embed discord.Embed) error
	DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error
	AddReaction(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error
	// ReactionUsers pages through everyone holding emoji on the message.
	ReactionUsers(ctx context.Context, channelID, messageID snowflake.ID, emoji string) ([]Reactor, error)
	GuildName(guildID snowflake.ID) string
}
