package handler

import (
	"fmt"
	"net/http"

	"github.com/scenevault/scenevault/internal/metrics"
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

	writeMetric(w, "scenevault_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "scenevault_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "scenevault_logins_total{status=\"failure\"} %d\n", snap.LoginsFailed)
	writeMetric(w, "scenevault_rate_limited_total %d\n", snap.RateLimited)

	writeMetric(w, "scenevault_scenes_saved_total{result=\"created\"} %d\n", snap.ScenesCreated)
	writeMetric(w, "scenevault_scenes_saved_total{result=\"updated\"} %d\n", snap.ScenesUpdated)
	writeMetric(w, "scenevault_scene_save_duration_seconds_count %d\n", snap.SceneSaveDurationCount)
	writeMetric(w, "scenevault_scene_save_duration_seconds_sum %.6f\n", float64(snap.SceneSaveDurationTotalNs)/1e9)

	writeMetric(w, "scenevault_scenes_loaded_total{result=\"hit\"} %d\n", snap.SceneLoadHits)
	writeMetric(w, "scenevault_scenes_loaded_total{result=\"miss\"} %d\n", snap.SceneLoadMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
