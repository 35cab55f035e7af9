package handler

import (
	"fmt"
	"net/http"

	"github.com/quillfeed/quillfeed/internal/metrics"
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

	writeMetric(w, "quillfeed_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "quillfeed_logins_total{status=\"success\"} %d\n", snap.LoginSuccesses)
	writeMetric(w, "quillfeed_logins_total{status=\"failure\"} %d\n", snap.LoginFailures)

	writeMetric(w, "quillfeed_posts_created_total %d\n", snap.PostsCreated)
	writeMetric(w, "quillfeed_posts_updated_total %d\n", snap.PostsUpdated)
	writeMetric(w, "quillfeed_posts_deleted_total %d\n", snap.PostsDeleted)

	writeMetric(w, "quillfeed_comments_created_total %d\n", snap.CommentsCreated)
	writeMetric(w, "quillfeed_comments_deleted_total %d\n", snap.CommentsDeleted)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
