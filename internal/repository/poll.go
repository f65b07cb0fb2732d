package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/commonsroom/commonsroom/internal/model"
)

// Common errors for poll repository operations.
var (
	ErrPollNotFound = errors.New("poll not found")
	// ErrAlreadyVoted is raised by the unique index on (poll_id, user_id).
	// The constraint, not any preceding read, is the authoritative duplicate
	// signal: two concurrent inserts for the same pair cannot both succeed.
	ErrAlreadyVoted = errors.New("user has already voted on this poll")
	// ErrInvalidOption indicates the referenced option does not exist or does
	// not belong to the target poll.
	ErrInvalidOption = errors.New("option does not belong to poll")
)

// CreatePoll inserts a poll and its options in a single transaction.
// Either all rows land or none do; a poll is never visible without its options.
func (r *Repository) CreatePoll(ctx context.Context, poll *model.Poll, options []*model.PollOption) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pollQuery := `
		INSERT INTO polls (id, question, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = tx.Exec(ctx, pollQuery,
		poll.ID,
		poll.Question,
		poll.IsActive,
		poll.CreatedBy,
		poll.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create poll: %w", err)
	}

	optionQuery := `
		INSERT INTO poll_options (id, poll_id, option_text)
		VALUES ($1, $2, $3)
	`
	for _, opt := range options {
		if _, err := tx.Exec(ctx, optionQuery, opt.ID, opt.PollID, opt.OptionText); err != nil {
			return fmt.Errorf("failed to create poll option: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit poll: %w", err)
	}

	return nil
}

// GetPollByID retrieves a poll regardless of its active flag.
// Retired polls stay readable; they just stop being listed and voted on.
func (r *Repository) GetPollByID(ctx context.Context, id string) (*model.Poll, error) {
	query := `
		SELECT id, question, is_active, created_by, created_at
		FROM polls
		WHERE id = $1
	`

	var poll model.Poll
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&poll.ID,
		&poll.Question,
		&poll.IsActive,
		&poll.CreatedBy,
		&poll.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	return &poll, nil
}

// ListActivePolls retrieves all active polls, newest first.
func (r *Repository) ListActivePolls(ctx context.Context) ([]*model.Poll, error) {
	query := `
		SELECT id, question, is_active, created_by, created_at
		FROM polls
		WHERE is_active = TRUE
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	var polls []*model.Poll
	for rows.Next() {
		var poll model.Poll
		if err := rows.Scan(&poll.ID, &poll.Question, &poll.IsActive, &poll.CreatedBy, &poll.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, &poll)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}

	return polls, nil
}

// RetirePoll flips a poll to inactive. The transition is one-way; there is no
// reactivation path.
func (r *Repository) RetirePoll(ctx context.Context, id string) error {
	query := `
		UPDATE polls
		SET is_active = FALSE
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to retire poll: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrPollNotFound
	}

	return nil
}

// ListOptions retrieves all options for a poll in insertion order.
func (r *Repository) ListOptions(ctx context.Context, pollID string) ([]*model.PollOption, error) {
	query := `
		SELECT id, poll_id, option_text
		FROM poll_options
		WHERE poll_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	defer rows.Close()

	var options []*model.PollOption
	for rows.Next() {
		var opt model.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.OptionText); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, &opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating options: %w", err)
	}

	return options, nil
}

// ListVotes retrieves all votes for a poll.
func (r *Repository) ListVotes(ctx context.Context, pollID string) ([]*model.Vote, error) {
	query := `
		SELECT id, poll_id, option_id, user_id, created_at
		FROM poll_votes
		WHERE poll_id = $1
	`

	rows, err := r.pool.Query(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []*model.Vote
	for rows.Next() {
		var vote model.Vote
		if err := rows.Scan(&vote.ID, &vote.PollID, &vote.OptionID, &vote.UserID, &vote.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, &vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}

	return votes, nil
}

// InsertVote appends one vote row. The ux_poll_votes_poll_user unique index
// serializes concurrent duplicates; a 23505 here means another request for the
// same (poll, user) pair won the race.
func (r *Repository) InsertVote(ctx context.Context, vote *model.Vote) error {
	query := `
		INSERT INTO poll_votes (id, poll_id, option_id, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		vote.ID,
		vote.PollID,
		vote.OptionID,
		vote.UserID,
		vote.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyVoted
		}
		if isForeignKeyViolation(err) {
			return ErrInvalidOption
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}

	return nil
}
