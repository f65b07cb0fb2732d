// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Identity cache metrics
	IncIdentityCacheHit()
	IncIdentityCacheMiss()

	// Voting metrics
	IncVoteCast()
	IncVoteRejected(reason string) // reason: "already_voted", "invalid_option", "poll_not_active"
	ObserveTallyDuration(duration time.Duration)

	// Poll lifecycle metrics
	IncPollCreated()
	IncPollRetired()

	// Feedback metrics
	IncFeedbackSubmitted()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
