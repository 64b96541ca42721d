// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Login outcome labels.
const (
	LoginSuccess = "success"
	LoginFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Account metrics
	IncUserRegistered()
	IncLogin(status string) // status: LoginSuccess or LoginFailure
	IncRateLimited()

	// Scene metrics
	IncSceneSaved(created bool)
	IncSceneLoaded(found bool)
	ObserveSceneSaveDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
