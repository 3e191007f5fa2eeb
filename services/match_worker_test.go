package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitalong_server/models"
)

func testWorkerFixture(t *testing.T, workers, queueSize int) (*MatchWorker, *memMatchStore) {
	t.Helper()
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeRight)

	det := testDetector(swipes, matches, profiles)
	return NewMatchWorker(det, workers, queueSize, zap.NewNop()), matches
}

func TestWorkerRunsDetection(t *testing.T) {
	worker, matches := testWorkerFixture(t, 1, 8)

	ok := worker.Enqueue(DetectionJob{ActorID: "bob", TargetID: "alice", TargetKind: models.TargetKindUser})
	require.True(t, ok)
	worker.Stop()

	matches.mu.Lock()
	defer matches.mu.Unlock()
	assert.Len(t, matches.byPair, 1)
}

func TestEnqueueAfterStopIsRejected(t *testing.T) {
	worker, _ := testWorkerFixture(t, 1, 8)
	worker.Stop()

	ok := worker.Enqueue(DetectionJob{ActorID: "bob", TargetID: "alice", TargetKind: models.TargetKindUser})
	assert.False(t, ok)
}

func TestEnqueueRejectsWhenQueueFull(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()

	// Every lookup fails transiently, so each job holds its worker for
	// the full retry budget while the enqueue loop runs unthrottled.
	swipes.failGets = 1000

	det := testDetector(swipes, matches, profiles)
	worker := NewMatchWorker(det, 1, 1, zap.NewNop())
	defer worker.Stop()

	accepted := 0
	for i := 0; i < 50; i++ {
		if worker.Enqueue(DetectionJob{ActorID: "nobody", TargetID: "noone", TargetKind: models.TargetKindUser}) {
			accepted++
		}
	}
	assert.Less(t, accepted, 50, "a bounded queue must eventually refuse")
}

func TestEnqueueRacingStopDoesNotPanic(t *testing.T) {
	worker, _ := testWorkerFixture(t, 2, 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				worker.Enqueue(DetectionJob{ActorID: "bob", TargetID: "alice", TargetKind: models.TargetKindUser})
			}
		}()
	}
	worker.Stop()
	wg.Wait()

	assert.False(t, worker.Enqueue(DetectionJob{ActorID: "bob", TargetID: "alice", TargetKind: models.TargetKindUser}))
}

func TestStopWaitsForInFlightJobs(t *testing.T) {
	worker, matches := testWorkerFixture(t, 2, 16)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Enqueue(DetectionJob{ActorID: "bob", TargetID: "alice", TargetKind: models.TargetKindUser})
		}()
	}
	wg.Wait()

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}

	matches.mu.Lock()
	defer matches.mu.Unlock()
	assert.Len(t, matches.byPair, 1, "duplicate jobs collapse onto one match")
}
