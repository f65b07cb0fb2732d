// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/commonsroom/commonsroom/internal/metrics"
	"github.com/commonsroom/commonsroom/internal/model"
	"github.com/commonsroom/commonsroom/internal/repository"
)

// Poll service errors.
var (
	ErrPollNotFound       = errors.New("poll not found")
	ErrPollNotActive      = errors.New("poll is no longer accepting votes")
	ErrAlreadyVoted       = errors.New("user has already voted on this poll")
	ErrInvalidOption      = errors.New("option does not belong to poll")
	ErrQuestionRequired   = errors.New("poll question is required")
	ErrTooFewOptions      = errors.New("poll requires at least two options")
	ErrOptionTextRequired = errors.New("option text is required")
)

// minPollOptions is the smallest option set that makes a poll meaningful.
const minPollOptions = 2

// PollStore is the storage capability the poll service depends on.
// *repository.Repository satisfies it; tests substitute a fake.
type PollStore interface {
	CreatePoll(ctx context.Context, poll *model.Poll, options []*model.PollOption) error
	GetPollByID(ctx context.Context, id string) (*model.Poll, error)
	ListActivePolls(ctx context.Context) ([]*model.Poll, error)
	RetirePoll(ctx context.Context, id string) error
	ListOptions(ctx context.Context, pollID string) ([]*model.PollOption, error)
	ListVotes(ctx context.Context, pollID string) ([]*model.Vote, error)
	InsertVote(ctx context.Context, vote *model.Vote) error
}

// PollService handles poll lifecycle, vote recording, and tally computation.
type PollService struct {
	store   PollStore
	metrics metrics.Recorder
}

// NewPollService creates a new PollService.
func NewPollService(store PollStore, recorder metrics.Recorder) *PollService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &PollService{
		store:   store,
		metrics: recorder,
	}
}

// CreatePollInput defines input for creating a poll.
type CreatePollInput struct {
	Question  string
	Options   []string
	CreatedBy string
}

// CreatePoll creates a new active poll with its options in one transaction.
func (s *PollService) CreatePoll(ctx context.Context, input CreatePollInput) (*model.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrQuestionRequired
	}

	if len(input.Options) < minPollOptions {
		return nil, ErrTooFewOptions
	}

	poll := &model.Poll{
		ID:        newID(),
		Question:  question,
		IsActive:  true,
		CreatedBy: input.CreatedBy,
		CreatedAt: time.Now().UTC(),
	}

	options := make([]*model.PollOption, 0, len(input.Options))
	for _, text := range input.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, ErrOptionTextRequired
		}
		options = append(options, &model.PollOption{
			ID:         newID(),
			PollID:     poll.ID,
			OptionText: text,
		})
	}

	if err := s.store.CreatePoll(ctx, poll, options); err != nil {
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	s.metrics.IncPollCreated()

	return poll, nil
}

// ListPolls returns all active polls with their current tallies.
func (s *PollService) ListPolls(ctx context.Context) ([]*model.PollWithTally, error) {
	polls, err := s.store.ListActivePolls(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}

	result := make([]*model.PollWithTally, 0, len(polls))
	for _, poll := range polls {
		tally, err := s.Tally(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &model.PollWithTally{Poll: poll, Tally: tally})
	}

	return result, nil
}

// GetPoll returns a single poll with its current tally.
// Retired polls remain readable.
func (s *PollService) GetPoll(ctx context.Context, pollID string) (*model.PollWithTally, error) {
	poll, err := s.store.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrPollNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	tally, err := s.Tally(ctx, pollID)
	if err != nil {
		return nil, err
	}

	return &model.PollWithTally{Poll: poll, Tally: tally}, nil
}

// RetirePoll deactivates a poll. The transition is one-way: a retired poll
// disappears from listings and rejects further votes.
func (s *PollService) RetirePoll(ctx context.Context, pollID string) error {
	if err := s.store.RetirePoll(ctx, pollID); err != nil {
		if errors.Is(err, repository.ErrPollNotFound) {
			return ErrPollNotFound
		}
		return fmt.Errorf("failed to retire poll: %w", err)
	}

	s.metrics.IncPollRetired()

	return nil
}

// CastVote records one user's vote on a poll.
//
// Preconditions are checked in order: the poll must exist and be active, and
// the option must belong to the poll. The duplicate-vote rule is NOT enforced
// by a preceding read: the storage layer's unique (poll_id, user_id) index is
// the authoritative signal, so two concurrent submissions from the same user
// resolve to exactly one inserted row.
func (s *PollService) CastVote(ctx context.Context, pollID, userID, optionID string) (*model.Vote, error) {
	poll, err := s.store.GetPollByID(ctx, pollID)
	if err != nil {
		if errors.Is(err, repository.ErrPollNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to load poll: %w", err)
	}

	if !poll.IsActive {
		s.metrics.IncVoteRejected("poll_not_active")
		return nil, ErrPollNotActive
	}

	options, err := s.store.ListOptions(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	if !optionBelongsToPoll(options, optionID) {
		s.metrics.IncVoteRejected("invalid_option")
		return nil, ErrInvalidOption
	}

	vote := &model.Vote{
		ID:        newID(),
		PollID:    pollID,
		OptionID:  optionID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.InsertVote(ctx, vote); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyVoted):
			s.metrics.IncVoteRejected("already_voted")
			return nil, ErrAlreadyVoted
		case errors.Is(err, repository.ErrInvalidOption):
			s.metrics.IncVoteRejected("invalid_option")
			return nil, ErrInvalidOption
		default:
			return nil, fmt.Errorf("failed to insert vote: %w", err)
		}
	}

	s.metrics.IncVoteCast()

	return vote, nil
}

// Tally computes the current result set for a poll from its vote rows.
// Figures are derived on every call and never persisted. The options and
// votes reads are not transactional; a vote landing between them only skews
// the advisory percentages until the next read.
func (s *PollService) Tally(ctx context.Context, pollID string) (*model.PollTally, error) {
	start := time.Now()

	options, err := s.store.ListOptions(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load options: %w", err)
	}

	votes, err := s.store.ListVotes(ctx, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}

	tally := model.NewPollTally(options, votes)

	s.metrics.ObserveTallyDuration(time.Since(start))

	return tally, nil
}

// optionBelongsToPoll reports whether optionID is one of the poll's options.
func optionBelongsToPoll(options []*model.PollOption, optionID string) bool {
	for _, opt := range options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// newID generates a unique, lexically sortable ID for new rows.
func newID() string {
	return ulid.Make().String()
}
