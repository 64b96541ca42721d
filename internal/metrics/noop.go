package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}

// IncSceneSaved is a no-op.
func (n *NoopRecorder) IncSceneSaved(created bool) {}

// IncSceneLoaded is a no-op.
func (n *NoopRecorder) IncSceneLoaded(found bool) {}

// ObserveSceneSaveDuration is a no-op.
func (n *NoopRecorder) ObserveSceneSaveDuration(duration time.Duration) {}
