package poll

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/Re4LH/discord-bot/availbot/database/repositories"
	"github.com/disgoorg/snowflake/v2"
)

// Reconciler rebuilds a poll's tally from the reactions actually on
// the Discord message and re-renders it. Treating Discord as the
// source of truth on every event makes add and remove handling
// identical and self-heals any missed gateway events.
type Reconciler struct {
	client ChannelClient
	active *ActivePolls
	votes  repositories.VoteRepository

	mu      sync.RWMutex
	botUser snowflake.ID
}

func NewReconciler(client ChannelClient, active *ActivePolls, votes repositories.VoteRepository) *Reconciler {
	return &Reconciler{client: client, active: active, votes: votes}
}

// SetBotUser records our own user ID so the seeded reactions are
// never counted as votes. Set from the ready event.
func (r *Reconciler) SetBotUser(id snowflake.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.botUser = id
}

func (r *Reconciler) isSelf(id snowflake.ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.botUser == id
}

// HandleReaction processes a reaction add or remove on messageID by
// actor. Events on untracked messages and the bot's own reactions are
// ignored.
func (r *Reconciler) HandleReaction(ctx context.Context, messageID, actor snowflake.ID) error {
	p, ok := r.active.Get(messageID)
	if !ok {
		return nil
	}
	if r.isSelf(actor) {
		return nil
	}

	// Drop the actor's stored vote first; the resync below restores
	// it from whatever reactions they still hold.
	if err := r.votes.Delete(ctx, p.PollID, actor.String()); err != nil {
		return err
	}

	if err := r.resync(ctx, p); err != nil {
		return err
	}

	return r.rerender(ctx, p)
}

// Refresh re-reads reactions and re-renders without a triggering
// actor, used after a restart to pick up votes cast while offline.
func (r *Reconciler) Refresh(ctx context.Context, messageID snowflake.ID) error {
	p, ok := r.active.Get(messageID)
	if !ok {
		return ErrMessageNotFound
	}
	if err := r.resync(ctx, p); err != nil {
		return err
	}
	return r.rerender(ctx, p)
}

// resync upserts a vote row for every non-bot user holding one of the
// poll's emojis. Emojis outside the snapshot are never queried, so
// off-palette reactions cannot become votes.
func (r *Reconciler) resync(ctx context.Context, p *ActivePoll) error {
	for _, opt := range p.Options {
		reactors, err := r.client.ReactionUsers(ctx, p.ChannelID, p.MessageID, opt.Emoji)
		if err != nil {
			if errors.Is(err, ErrMessageNotFound) {
				r.active.Remove(p.MessageID)
				return err
			}
			return err
		}
		for _, reactor := range reactors {
			if reactor.Bot || r.isSelf(reactor.ID) {
				continue
			}
			vote := &models.Vote{
				PollID:      p.PollID,
				UserID:      reactor.ID.String(),
				Username:    reactor.Username,
				DisplayName: reactor.DisplayName,
				Emoji:       opt.Emoji,
			}
			if err := r.votes.Upsert(ctx, vote); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reconciler) rerender(ctx context.Context, p *ActivePoll) error {
	votes, err := r.votes.ListByPoll(ctx, p.PollID)
	if err != nil {
		return err
	}

	tally := make(map[string][]string, len(p.Options))
	for _, v := range votes {
		name := v.DisplayName
		if name == "" {
			name = v.Username
		}
		tally[v.Emoji] = append(tally[v.Emoji], name)
	}

	embed := BuildPollEmbed(p.Options, p.DateLabel, p.IsTest, r.client.GuildName(p.GuildID), tally)
	if err := r.client.EditMessage(ctx, p.ChannelID, p.MessageID, embed); err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			r.active.Remove(p.MessageID)
			slog.Info("Poll message gone, dropping from index",
				slog.String("type", "poll"),
				slog.String("message_id", p.MessageID.String()))
		}
		return err
	}
	return nil
}
