package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncIdentityCacheHit is a no-op.
func (n *NoopRecorder) IncIdentityCacheHit() {}

// IncIdentityCacheMiss is a no-op.
func (n *NoopRecorder) IncIdentityCacheMiss() {}

// IncVoteCast is a no-op.
func (n *NoopRecorder) IncVoteCast() {}

// IncVoteRejected is a no-op.
func (n *NoopRecorder) IncVoteRejected(reason string) {}

// ObserveTallyDuration is a no-op.
func (n *NoopRecorder) ObserveTallyDuration(duration time.Duration) {}

// IncPollCreated is a no-op.
func (n *NoopRecorder) IncPollCreated() {}

// IncPollRetired is a no-op.
func (n *NoopRecorder) IncPollRetired() {}

// IncFeedbackSubmitted is a no-op.
func (n *NoopRecorder) IncFeedbackSubmitted() {}
