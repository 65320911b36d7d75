package availbot

import (
	"context"
	"errors"
	"net/http"

	"github.com/Re4LH/discord-bot/availbot/poll"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
)

const reactionPageSize = 100

// channelClient implements poll.ChannelClient on top of disgo's rest
// client, translating Discord HTTP failures into the poll package's
// error vocabulary.
type channelClient struct {
	client bot.Client
}

func NewChannelClient(client bot.Client) poll.ChannelClient {
	return &channelClient{client: client}
}

func (c *channelClient) SendMessage(ctx context.Context, channelID snowflake.ID, embed discord.Embed) (snowflake.ID, error) {
	msg, err := c.client.Rest().CreateMessage(channelID, discord.MessageCreate{
		Embeds: []discord.Embed{embed},
	}, rest.WithCtx(ctx))
	if err != nil {
		return 0, mapRestError(err)
	}
	return msg.ID, nil
}

func (c *channelClient) EditMessage(ctx context.Context, channelID, messageID snowflake.ID, embed discord.Embed) error {
	_, err := c.client.Rest().UpdateMessage(channelID, messageID, discord.MessageUpdate{
		Embeds: &[]discord.Embed{embed},
	}, rest.WithCtx(ctx))
	return mapRestError(err)
}

func (c *channelClient) DeleteMessage(ctx context.Context, channelID, messageID snowflake.ID) error {
	return mapRestError(c.client.Rest().DeleteMessage(channelID, messageID, rest.WithCtx(ctx)))
}

func (c *channelClient) AddReaction(ctx context.Context, channelID, messageID snowflake.ID, emoji string) error {
	return mapRestError(c.client.Rest().AddReaction(channelID, messageID, emoji, rest.WithCtx(ctx)))
}

func (c *channelClient) ReactionUsers(ctx context.Context, channelID, messageID snowflake.ID, emoji string) ([]poll.Reactor, error) {
	var reactors []poll.Reactor
	var after snowflake.ID
	for {
		users, err := c.client.Rest().GetReactions(channelID, messageID, emoji, discord.MessageReactionTypeNormal, int(after), reactionPageSize, rest.WithCtx(ctx))
		if err != nil {
			return nil, mapRestError(err)
		}
		for _, user := range users {
			reactors = append(reactors, poll.Reactor{
				ID:          user.ID,
				Username:    user.Username,
				DisplayName: user.EffectiveName(),
				Bot:         user.Bot,
			})
			after = user.ID
		}
		if len(users) < reactionPageSize {
			return reactors, nil
		}
	}
}

func (c *channelClient) GuildName(guildID snowflake.ID) string {
	if guild, ok := c.client.Caches().Guild(guildID); ok {
		return guild.Name
	}
	return "сървъра"
}

func mapRestError(err error) error {
	if err == nil {
		return nil
	}
	var restErr rest.Error
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return poll.ErrChannelPermissionDenied
		case http.StatusNotFound:
			return poll.ErrMessageNotFound
		}
	}
	return err
}
