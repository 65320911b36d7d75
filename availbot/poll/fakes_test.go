package poll

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Re4LH/discord-bot/availbot/config"
	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// fakeChannelClient is an in-memory Discord channel: messages hold an
// embed and a set of reactions per emoji.
type fakeChannelClient struct {
	mu        sync.Mutex
	nextID    snowflake.ID
	messages  map[snowflake.ID]fakeMessage
	guildName string

	sendErr   error
	editErr   error
	deleteErr error

	deleted []snowflake.ID
	edits   int
}

type fakeMessage struct {
	channelID snowflake.ID
	embed     discord.Embed
	reactions map[string][]Reactor
}

func newFakeChannelClient() *fakeChannelClient {
	return &fakeChannelClient{
		nextID:    1000,
		messages:  map[snowflake.ID]fakeMessage{},
		guildName: "Test Guild",
	}
}

func (c *fakeChannelClient) SendMessage(_ context.Context, channelID snowflake.ID, embed discord.Embed) (snowflake.ID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return 0, c.sendErr
	}
	c.nextID++
	id := c.nextID
	c.messages[id] = fakeMessage{
		channelID: channelID,
		embed:     embed,
		reactions: map[string][]Reactor{},
	}
	return id, nil
}

func (c *fakeChannelClient) EditMessage(_ context.Context, _, messageID snowflake.ID, embed discord.Embed) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.editErr != nil {
		return c.editErr
	}
	msg, ok := c.messages[messageID]
	if !ok {
		return ErrMessageNotFound
	}
	msg.embed = embed
	c.messages[messageID] = msg
	c.edits++
	return nil
}

func (c *fakeChannelClient) DeleteMessage(_ context.Context, _, messageID snowflake.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	if _, ok := c.messages[messageID]; !ok {
		return ErrMessageNotFound
	}
	delete(c.messages, messageID)
	c.deleted = append(c.deleted, messageID)
	return nil
}

func (c *fakeChannelClient) AddReaction(_ context.Context, _, messageID snowflake.ID, emoji string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[messageID]
	if !ok {
		return ErrMessageNotFound
	}
	if _, ok := msg.reactions[emoji]; !ok {
		msg.reactions[emoji] = nil
	}
	c.messages[messageID] = msg
	return nil
}

func (c *fakeChannelClient) ReactionUsers(_ context.Context, _, messageID snowflake.ID, emoji string) ([]Reactor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[messageID]
	if !ok {
		return nil, ErrMessageNotFound
	}
	return append([]Reactor(nil), msg.reactions[emoji]...), nil
}

func (c *fakeChannelClient) lastEmbed(messageID snowflake.ID) (discord.Embed, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg, ok := c.messages[messageID]
	return msg.embed, ok
}

func (c *fakeChannelClient) react(messageID snowflake.ID, emoji string, r Reactor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.messages[messageID]
	if msg.reactions == nil {
		msg.reactions = map[string][]Reactor{}
	}
	msg.reactions[emoji] = append(msg.reactions[emoji], r)
	c.messages[messageID] = msg
}

func (c *fakeChannelClient) unreact(messageID snowflake.ID, emoji string, userID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := c.messages[messageID]
	var kept []Reactor
	for _, r := range msg.reactions[emoji] {
		if r.ID != userID {
			kept = append(kept, r)
		}
	}
	msg.reactions[emoji] = kept
	c.messages[messageID] = msg
}

func (c *fakeChannelClient) GuildName(snowflake.ID) string {
	return c.guildName
}

// inMemoryConfigs implements repositories.ConfigRepository.
type inMemoryConfigs struct {
	mu      sync.Mutex
	configs map[string]*models.GuildConfig
	saveErr error
}

func newInMemoryConfigs() *inMemoryConfigs {
	return &inMemoryConfigs{configs: map[string]*models.GuildConfig{}}
}

func (r *inMemoryConfigs) Get(_ context.Context, guildID string) (*models.GuildConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cfg, ok := r.configs[guildID]; ok {
		return cfg.Clone(), nil
	}
	cfg := models.NewGuildConfig(guildID)
	r.configs[guildID] = cfg
	return cfg.Clone(), nil
}

func (r *inMemoryConfigs) Save(_ context.Context, cfg *models.GuildConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.configs[cfg.GuildID] = cfg.Clone()
	return nil
}

func (r *inMemoryConfigs) Remove(_ context.Context, guildID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.configs, guildID)
	return nil
}

func (r *inMemoryConfigs) ListEnabled(context.Context) ([]*models.GuildConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GuildConfig
	for _, cfg := range r.configs {
		if cfg.Enabled && cfg.ChannelID != "" {
			out = append(out, cfg.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (r *inMemoryConfigs) ListWithHistory(context.Context) ([]*models.GuildConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.GuildConfig
	for _, cfg := range r.configs {
		if len(cfg.PollHistory) > 0 {
			out = append(out, cfg.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GuildID < out[j].GuildID })
	return out, nil
}

func (r *inMemoryConfigs) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.configs), nil
}

// inMemoryPolls implements repositories.PollRepository.
type inMemoryPolls struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*models.Poll
	createErr error
}

func newInMemoryPolls() *inMemoryPolls {
	return &inMemoryPolls{nextID: 1, rows: map[int64]*models.Poll{}}
}

func (r *inMemoryPolls) Create(_ context.Context, p *models.Poll) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	p.ID = r.nextID
	r.nextID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.rows[p.ID] = p

	var guild []*models.Poll
	for _, row := range r.rows {
		if row.GuildID == p.GuildID {
			guild = append(guild, row)
		}
	}
	sort.Slice(guild, func(i, j int) bool {
		if !guild[i].CreatedAt.Equal(guild[j].CreatedAt) {
			return guild[i].CreatedAt.After(guild[j].CreatedAt)
		}
		return guild[i].ID > guild[j].ID
	})
	var pruned []string
	for _, row := range guild[min(len(guild), config.PollRowRetention):] {
		delete(r.rows, row.ID)
		pruned = append(pruned, row.MessageID)
	}
	return pruned, nil
}

func (r *inMemoryPolls) GetByMessageID(_ context.Context, messageID string) (*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.rows {
		if p.MessageID == messageID {
			return p, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (r *inMemoryPolls) ListByGuild(_ context.Context, guildID string, limit int) ([]*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Poll
	for _, p := range r.rows {
		if p.GuildID == guildID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryPolls) ListLive(_ context.Context, messageIDs []string) ([]*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := map[string]bool{}
	for _, id := range messageIDs {
		wanted[id] = true
	}
	var out []*models.Poll
	for _, p := range r.rows {
		if wanted[p.MessageID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *inMemoryPolls) ListAll(context.Context) ([]*models.Poll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Poll
	for _, p := range r.rows {
		out = append(out, p)
	}
	return out, nil
}

func (r *inMemoryPolls) Delete(_ context.Context, pollID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, pollID)
	return nil
}

func (r *inMemoryPolls) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, p := range r.rows {
		if p.CreatedAt.Before(cutoff) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *inMemoryPolls) DeleteByGuild(_ context.Context, guildID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, p := range r.rows {
		if p.GuildID == guildID {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *inMemoryPolls) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows), nil
}

// inMemoryVotes implements repositories.VoteRepository.
type inMemoryVotes struct {
	mu    sync.Mutex
	seq   int
	votes map[int64]map[string]*models.Vote
}

func newInMemoryVotes() *inMemoryVotes {
	return &inMemoryVotes{votes: map[int64]map[string]*models.Vote{}}
}

func (r *inMemoryVotes) Upsert(_ context.Context, v *models.Vote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser := r.votes[v.PollID]
	if byUser == nil {
		byUser = map[string]*models.Vote{}
		r.votes[v.PollID] = byUser
	}
	if existing, ok := byUser[v.UserID]; ok {
		existing.Emoji = v.Emoji
		existing.Username = v.Username
		existing.DisplayName = v.DisplayName
		existing.UpdatedAt = time.Now()
		return nil
	}
	r.seq++
	stored := *v
	stored.VotedAt = time.Unix(int64(r.seq), 0)
	byUser[v.UserID] = &stored
	return nil
}

func (r *inMemoryVotes) Delete(_ context.Context, pollID int64, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.votes[pollID], userID)
	return nil
}

func (r *inMemoryVotes) ListByPoll(_ context.Context, pollID int64) ([]*models.Vote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Vote
	for _, v := range r.votes[pollID] {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].VotedAt.Equal(out[j].VotedAt) {
			return out[i].VotedAt.Before(out[j].VotedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (r *inMemoryVotes) Count(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, byUser := range r.votes {
		n += len(byUser)
	}
	return n, nil
}
