package model

import "testing"

func TestNewPollTally(t *testing.T) {
	options := []*PollOption{
		{ID: "a", PollID: "p1", OptionText: "Yes"},
		{ID: "b", PollID: "p1", OptionText: "No"},
		{ID: "c", PollID: "p1", OptionText: "Maybe"},
	}

	tests := []struct {
		name         string
		votes        []*Vote
		wantTotal    int
		wantCounts   []int
		wantPercents []int
	}{
		{
			name:         "no votes",
			votes:        nil,
			wantTotal:    0,
			wantCounts:   []int{0, 0, 0},
			wantPercents: []int{0, 0, 0},
		},
		{
			name: "two to one",
			votes: []*Vote{
				{OptionID: "a"}, {OptionID: "a"}, {OptionID: "b"},
			},
			wantTotal:    3,
			wantCounts:   []int{2, 1, 0},
			wantPercents: []int{67, 33, 0},
		},
		{
			name: "even split",
			votes: []*Vote{
				{OptionID: "a"}, {OptionID: "b"},
			},
			wantTotal:    2,
			wantCounts:   []int{1, 1, 0},
			wantPercents: []int{50, 50, 0},
		},
		{
			name: "all one option",
			votes: []*Vote{
				{OptionID: "c"}, {OptionID: "c"},
			},
			wantTotal:    2,
			wantCounts:   []int{0, 0, 2},
			wantPercents: []int{0, 0, 100},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := NewPollTally(options, tt.votes)

			if tally.TotalVotes != tt.wantTotal {
				t.Errorf("TotalVotes = %d, want %d", tally.TotalVotes, tt.wantTotal)
			}
			if len(tally.Options) != len(options) {
				t.Fatalf("got %d option tallies, want %d", len(tally.Options), len(options))
			}
			for i, opt := range tally.Options {
				if opt.VoteCount != tt.wantCounts[i] {
					t.Errorf("option %s count = %d, want %d", opt.ID, opt.VoteCount, tt.wantCounts[i])
				}
				if opt.Percent != tt.wantPercents[i] {
					t.Errorf("option %s percent = %d, want %d", opt.ID, opt.Percent, tt.wantPercents[i])
				}
			}
		})
	}
}

func TestNewPollTallyIgnoresUnknownOptionVotes(t *testing.T) {
	options := []*PollOption{
		{ID: "a", OptionText: "Yes"},
	}
	votes := []*Vote{
		{OptionID: "a"},
		{OptionID: "ghost"},
	}

	tally := NewPollTally(options, votes)

	// Total counts every ledger row; unknown options simply get no bucket.
	if tally.TotalVotes != 2 {
		t.Errorf("TotalVotes = %d, want 2", tally.TotalVotes)
	}
	if tally.Options[0].VoteCount != 1 {
		t.Errorf("option a count = %d, want 1", tally.Options[0].VoteCount)
	}
}

func TestProfileIsAdmin(t *testing.T) {
	admin := &Profile{Role: RoleAdmin}
	if !admin.IsAdmin() {
		t.Error("admin profile should report IsAdmin")
	}

	member := &Profile{Role: RoleMember}
	if member.IsAdmin() {
		t.Error("member profile should not report IsAdmin")
	}
}

func TestProjectStatusIsValid(t *testing.T) {
	for _, status := range ValidProjectStatuses {
		if !status.IsValid() {
			t.Errorf("status %q should be valid", status)
		}
	}
	if ProjectStatus("shipped").IsValid() {
		t.Error("unknown status should be invalid")
	}
}

func TestFeedbackCategoryIsValid(t *testing.T) {
	for _, category := range ValidFeedbackCategories {
		if !category.IsValid() {
			t.Errorf("category %q should be valid", category)
		}
	}
	if FeedbackCategory("rant").IsValid() {
		t.Error("unknown category should be invalid")
	}
}
