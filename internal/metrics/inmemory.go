package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	IdentityCacheHits    uint64
	IdentityCacheMisses  uint64
	VotesCast            uint64
	VotesRejected        map[string]uint64
	TallyDurationCount   uint64
	TallyDurationTotalNs int64
	PollsCreated         uint64
	PollsRetired         uint64
	FeedbackSubmitted    uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	identityCacheHits    uint64
	identityCacheMisses  uint64
	votesCast            uint64
	tallyDurationCount   uint64
	tallyDurationTotalNs int64
	pollsCreated         uint64
	pollsRetired         uint64
	feedbackSubmitted    uint64

	mu            sync.Mutex
	votesRejected map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		votesRejected: make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	rejected := make(map[string]uint64, len(m.votesRejected))
	for reason, count := range m.votesRejected {
		rejected[reason] = count
	}
	m.mu.Unlock()

	return Snapshot{
		IdentityCacheHits:    atomic.LoadUint64(&m.identityCacheHits),
		IdentityCacheMisses:  atomic.LoadUint64(&m.identityCacheMisses),
		VotesCast:            atomic.LoadUint64(&m.votesCast),
		VotesRejected:        rejected,
		TallyDurationCount:   atomic.LoadUint64(&m.tallyDurationCount),
		TallyDurationTotalNs: atomic.LoadInt64(&m.tallyDurationTotalNs),
		PollsCreated:         atomic.LoadUint64(&m.pollsCreated),
		PollsRetired:         atomic.LoadUint64(&m.pollsRetired),
		FeedbackSubmitted:    atomic.LoadUint64(&m.feedbackSubmitted),
	}
}

// IncIdentityCacheHit increments the identity cache hit counter.
func (m *InMemoryRecorder) IncIdentityCacheHit() {
	atomic.AddUint64(&m.identityCacheHits, 1)
}

// IncIdentityCacheMiss increments the identity cache miss counter.
func (m *InMemoryRecorder) IncIdentityCacheMiss() {
	atomic.AddUint64(&m.identityCacheMisses, 1)
}

// IncVoteCast increments the votes cast counter.
func (m *InMemoryRecorder) IncVoteCast() {
	atomic.AddUint64(&m.votesCast, 1)
}

// IncVoteRejected increments the rejection counter for a reason.
func (m *InMemoryRecorder) IncVoteRejected(reason string) {
	m.mu.Lock()
	m.votesRejected[reason]++
	m.mu.Unlock()
}

// ObserveTallyDuration records tally computation duration.
func (m *InMemoryRecorder) ObserveTallyDuration(duration time.Duration) {
	atomic.AddUint64(&m.tallyDurationCount, 1)
	atomic.AddInt64(&m.tallyDurationTotalNs, duration.Nanoseconds())
}

// IncPollCreated increments the polls created counter.
func (m *InMemoryRecorder) IncPollCreated() {
	atomic.AddUint64(&m.pollsCreated, 1)
}

// IncPollRetired increments the polls retired counter.
func (m *InMemoryRecorder) IncPollRetired() {
	atomic.AddUint64(&m.pollsRetired, 1)
}

// IncFeedbackSubmitted increments the feedback submitted counter.
func (m *InMemoryRecorder) IncFeedbackSubmitted() {
	atomic.AddUint64(&m.feedbackSubmitted, 1)
}
