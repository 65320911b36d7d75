package repositories

import (
	"context"
	"time"

	"github.com/Re4LH/discord-bot/availbot/database/models"
	"github.com/uptrace/bun"
)

type VoteRepository interface {
	// Upsert records or replaces a user's vote on a poll. The original
	// voted_at is kept so tally ordering stays stable across switches.
	Upsert(ctx context.Context, vote *models.Vote) error
	Delete(ctx context.Context, pollID int64, userID string) error
	ListByPoll(ctx context.Context, pollID int64) ([]*models.Vote, error)
	Count(ctx context.Context) (int, error)
}

type voteRepository struct {
	db *bun.DB
}

func NewVoteRepository(db *bun.DB) VoteRepository {
	return &voteRepository{db: db}
}

func (r *voteRepository) Upsert(ctx context.Context, vote *models.Vote) error {
	now := time.Now()
	if vote.VotedAt.IsZero() {
		vote.VotedAt = now
	}
	vote.UpdatedAt = now

	_, err := r.db.NewInsert().
		Model(vote).
		On("CONFLICT (poll_id, user_id) DO UPDATE").
		Set("emoji = EXCLUDED.emoji").
		Set("username = EXCLUDED.username").
		Set("display_name = EXCLUDED.display_name").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *voteRepository) Delete(ctx context.Context, pollID int64, userID string) error {
	_, err := r.db.NewDelete().
		Model((*models.Vote)(nil)).
		Where("poll_id = ?", pollID).
		Where("user_id = ?", userID).
		Exec(ctx)
	return err
}

func (r *voteRepository) ListByPoll(ctx context.Context, pollID int64) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.NewSelect().
		Model(&votes).
		Where("poll_id = ?", pollID).
		Order("voted_at ASC").
		Order("user_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return votes, nil
}

func (r *voteRepository) Count(ctx context.Context) (int, error) {
	return r.db.NewSelect().
		Model((*models.Vote)(nil)).
		Count(ctx)
}
