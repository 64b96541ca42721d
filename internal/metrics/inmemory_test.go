package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncUserRegistered()
	m.IncLogin(LoginSuccess)
	m.IncLogin(LoginFailure)
	m.IncLogin(LoginFailure)
	m.IncRateLimited()
	m.IncSceneSaved(true)
	m.IncSceneSaved(false)
	m.IncSceneSaved(false)
	m.IncSceneLoaded(true)
	m.IncSceneLoaded(false)
	m.ObserveSceneSaveDuration(1500 * time.Millisecond)

	want := Snapshot{
		UsersRegistered:          1,
		LoginsSucceeded:          1,
		LoginsFailed:             2,
		RateLimited:              1,
		ScenesCreated:            1,
		ScenesUpdated:            2,
		SceneLoadHits:            1,
		SceneLoadMisses:          1,
		SceneSaveDurationCount:   1,
		SceneSaveDurationTotalNs: int64(1500 * time.Millisecond),
	}
	if got := m.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncSceneSaved(false)
		}()
	}
	wg.Wait()

	if got := m.Snapshot().ScenesUpdated; got != 50 {
		t.Errorf("ScenesUpdated = %d, want 50", got)
	}
}

func TestNoopRecorder_ImplementsRecorder(t *testing.T) {
	t.Parallel()

	var r Recorder = NewNoop()
	r.IncUserRegistered()
	r.IncLogin(LoginSuccess)
	r.IncSceneSaved(true)
	r.IncSceneLoaded(false)
	r.ObserveSceneSaveDuration(time.Second)
	r.IncRateLimited()
}
