package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered          uint64
	LoginsSucceeded          uint64
	LoginsFailed             uint64
	RateLimited              uint64
	ScenesCreated            uint64
	ScenesUpdated            uint64
	SceneLoadHits            uint64
	SceneLoadMisses          uint64
	SceneSaveDurationCount   uint64
	SceneSaveDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory; /metrics renders its snapshot.
type InMemoryRecorder struct {
	usersRegistered          uint64
	loginsSucceeded          uint64
	loginsFailed             uint64
	rateLimited              uint64
	scenesCreated            uint64
	scenesUpdated            uint64
	sceneLoadHits            uint64
	sceneLoadMisses          uint64
	sceneSaveDurationCount   uint64
	sceneSaveDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:          atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:          atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:             atomic.LoadUint64(&m.loginsFailed),
		RateLimited:              atomic.LoadUint64(&m.rateLimited),
		ScenesCreated:            atomic.LoadUint64(&m.scenesCreated),
		ScenesUpdated:            atomic.LoadUint64(&m.scenesUpdated),
		SceneLoadHits:            atomic.LoadUint64(&m.sceneLoadHits),
		SceneLoadMisses:          atomic.LoadUint64(&m.sceneLoadMisses),
		SceneSaveDurationCount:   atomic.LoadUint64(&m.sceneSaveDurationCount),
		SceneSaveDurationTotalNs: atomic.LoadInt64(&m.sceneSaveDurationTotalNs),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin increments the login counter for status.
func (m *InMemoryRecorder) IncLogin(status string) {
	if status == LoginSuccess {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncRateLimited increments the rejected-by-rate-limit counter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncSceneSaved increments the created or updated scene counter.
func (m *InMemoryRecorder) IncSceneSaved(created bool) {
	if created {
		atomic.AddUint64(&m.scenesCreated, 1)
		return
	}
	atomic.AddUint64(&m.scenesUpdated, 1)
}

// IncSceneLoaded increments the load hit or miss counter.
func (m *InMemoryRecorder) IncSceneLoaded(found bool) {
	if found {
		atomic.AddUint64(&m.sceneLoadHits, 1)
		return
	}
	atomic.AddUint64(&m.sceneLoadMisses, 1)
}

// ObserveSceneSaveDuration records how long a save took.
func (m *InMemoryRecorder) ObserveSceneSaveDuration(duration time.Duration) {
	atomic.AddUint64(&m.sceneSaveDurationCount, 1)
	atomic.AddInt64(&m.sceneSaveDurationTotalNs, duration.Nanoseconds())
}
