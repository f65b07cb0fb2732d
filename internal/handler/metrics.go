package handler

import (
	"fmt"
	"net/http"

	"github.com/commonsroom/commonsroom/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "commonsroom_identity_cache_hits_total %d\n", snap.IdentityCacheHits)
	writeMetric(w, "commonsroom_identity_cache_misses_total %d\n", snap.IdentityCacheMisses)

	writeMetric(w, "commonsroom_votes_cast_total %d\n", snap.VotesCast)
	for reason, count := range snap.VotesRejected {
		writeMetric(w, "commonsroom_votes_rejected_total{reason=%q} %d\n", reason, count)
	}
	writeMetric(w, "commonsroom_tally_duration_seconds_count %d\n", snap.TallyDurationCount)
	writeMetric(w, "commonsroom_tally_duration_seconds_sum %.6f\n", float64(snap.TallyDurationTotalNs)/1e9)

	writeMetric(w, "commonsroom_polls_created_total %d\n", snap.PollsCreated)
	writeMetric(w, "commonsroom_polls_retired_total %d\n", snap.PollsRetired)

	writeMetric(w, "commonsroom_feedback_submitted_total %d\n", snap.FeedbackSubmitted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
