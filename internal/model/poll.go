package model

import (
	"math"
	"time"
)

// Poll is a question put to the community by an admin.
// Retirement is one-way: once is_active flips to false the poll disappears from
// listings and stops accepting votes, but its rows are never deleted.
type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	IsActive  bool      `json:"is_active"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// PollOption is one answer to a poll. Options are created atomically with their
// parent poll and are immutable afterwards.
type PollOption struct {
	ID         string `json:"id"`
	PollID     string `json:"poll_id"`
	OptionText string `json:"option_text"`
}

// Vote records one user's choice on one poll. Votes are append-only; the
// (poll_id, user_id) pair is unique at the storage layer.
type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// OptionTally is the derived vote count for one option.
type OptionTally struct {
	ID         string `json:"id"`
	OptionText string `json:"option_text"`
	VoteCount  int    `json:"votes"`
	Percent    int    `json:"percent"`
}

// PollTally is the derived result set for a poll. It is recomputed from the
// vote rows on every read and never persisted, so it cannot drift from the
// ledger.
type PollTally struct {
	Options    []OptionTally `json:"options"`
	TotalVotes int           `json:"total_votes"`
}

// NewPollTally aggregates votes into per-option counts and display percentages.
func NewPollTally(options []*PollOption, votes []*Vote) *PollTally {
	counts := make(map[string]int, len(options))
	for _, v := range votes {
		counts[v.OptionID]++
	}

	tally := &PollTally{
		Options:    make([]OptionTally, 0, len(options)),
		TotalVotes: len(votes),
	}

	for _, opt := range options {
		count := counts[opt.ID]
		percent := 0
		if tally.TotalVotes > 0 {
			percent = int(math.Round(float64(count) / float64(tally.TotalVotes) * 100))
		}
		tally.Options = append(tally.Options, OptionTally{
			ID:         opt.ID,
			OptionText: opt.OptionText,
			VoteCount:  count,
			Percent:    percent,
		})
	}

	return tally
}

// PollWithTally combines a poll, its options, and its current tally for
// list and detail responses.
type PollWithTally struct {
	Poll  *Poll      `json:"poll"`
	Tally *PollTally `json:"tally"`
}
