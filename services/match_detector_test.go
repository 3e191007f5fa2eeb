package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitalong_server/models"
)

func testDetector(swipes *memSwipeStore, matches *memMatchStore, profiles *memProfileStore) *MutualMatchDetector {
	det := NewMutualMatchDetector(swipes, matches, profiles, zap.NewNop())
	det.Backoff = time.Millisecond
	det.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return det
}

func seedProfiles(t *testing.T, profiles *memProfileStore, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, profiles.PutProfile(context.Background(), models.Profile{
			ActorID: id, DisplayName: id, Role: models.RoleContributor,
		}))
	}
}

func seedSwipe(t *testing.T, swipes *memSwipeStore, actor, target string, kind models.TargetKind, direction models.SwipeDirection) {
	t.Helper()
	key := models.SwipeKey{ActorID: actor, TargetID: target, Kind: kind}
	_, err := swipes.Upsert(context.Background(), models.NewSwipeEvent(key, direction, time.Now()))
	require.NoError(t, err)
}

func TestNoMatchWithoutReciprocity(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)

	det := testDetector(swipes, matches, profiles)
	for i := 0; i < 5; i++ {
		require.NoError(t, det.CheckAndCreate(context.Background(), "alice", "bob", models.TargetKindUser))
	}
	assert.Empty(t, matches.byPair, "a lone right-swipe never creates a match")
}

func TestLeftSwipeIsNotReciprocity(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeLeft)

	det := testDetector(swipes, matches, profiles)
	require.NoError(t, det.CheckAndCreate(context.Background(), "alice", "bob", models.TargetKindUser))
	assert.Empty(t, matches.byPair)
}

func TestMutualRightSwipeCreatesActiveMatch(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeRight)

	det := testDetector(swipes, matches, profiles)
	require.NoError(t, det.CheckAndCreate(context.Background(), "bob", "alice", models.TargetKindUser))

	require.Len(t, matches.byPair, 1)
	match := matches.byPair[models.PairKey(models.TargetKindUser, "alice", "bob")]
	assert.Equal(t, models.MatchStatusActive, match.Status)
	assert.NotEmpty(t, match.MatchID)
}

func TestConcurrentDetectorsCreateExactlyOneMatch(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeRight)

	det := testDetector(swipes, matches, profiles)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = det.CheckAndCreate(context.Background(), "alice", "bob", models.TargetKindUser)
	}()
	go func() {
		defer wg.Done()
		errs[1] = det.CheckAndCreate(context.Background(), "bob", "alice", models.TargetKindUser)
	}()
	wg.Wait()

	assert.NoError(t, errs[0], "both racers observe success")
	assert.NoError(t, errs[1], "both racers observe success")
	assert.Equal(t, 1, matches.creates, "the store admits exactly one winner")
	assert.Len(t, matches.byPair, 1)
}

func TestProjectAcceptanceCompletesMatch(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice")
	require.NoError(t, profiles.PutProject(context.Background(), models.Project{
		ProjectID: "proj-1", OwnerID: "maintainer", Name: "gitalong",
	}))

	// Contributor swipes the project first; no reciprocal yet.
	seedSwipe(t, swipes, "alice", "proj-1", models.TargetKindProject, models.SwipeRight)
	det := testDetector(swipes, matches, profiles)
	require.NoError(t, det.CheckAndCreate(context.Background(), "alice", "proj-1", models.TargetKindProject))
	assert.Empty(t, matches.byPair)

	// Maintainer acceptance is the project's right-swipe back.
	seedSwipe(t, swipes, "proj-1", "alice", models.TargetKindProject, models.SwipeRight)
	require.NoError(t, det.CheckAndCreate(context.Background(), "proj-1", "alice", models.TargetKindProject))

	require.Len(t, matches.byPair, 1)
	match := matches.byPair[models.PairKey(models.TargetKindProject, "alice", "proj-1")]
	assert.Equal(t, models.MatchStatusActive, match.Status)
}

func TestMissingProfileBlocksMatch(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice") // bob's profile is gone
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeRight)

	det := testDetector(swipes, matches, profiles)
	err := det.CheckAndCreate(context.Background(), "alice", "bob", models.TargetKindUser)
	assert.ErrorIs(t, err, ErrDependencyMissing)
	assert.Empty(t, matches.byPair)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeRight)
	matches.failCreates = 2

	det := testDetector(swipes, matches, profiles)
	err := det.CheckAndCreateWithRetry(context.Background(), "alice", "bob", models.TargetKindUser)
	require.NoError(t, err)
	assert.Len(t, matches.byPair, 1)
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice", "bob")
	seedSwipe(t, swipes, "alice", "bob", models.TargetKindUser, models.SwipeRight)
	seedSwipe(t, swipes, "bob", "alice", models.TargetKindUser, models.SwipeRight)
	matches.failCreates = 10

	det := testDetector(swipes, matches, profiles)
	err := det.CheckAndCreateWithRetry(context.Background(), "alice", "bob", models.TargetKindUser)
	assert.True(t, IsTransient(err))
	assert.Empty(t, matches.byPair)
}

// Full scenario: alice right-swipes project P, owner accepts, and a
// later unrelated left-swipe leaves the existing match untouched.
func TestSwipeAcceptanceScenario(t *testing.T) {
	ctx := context.Background()
	swipes := newMemSwipeStore()
	matches := newMemMatchStore()
	profiles := newMemProfileStore()
	seedProfiles(t, profiles, "alice")
	require.NoError(t, profiles.PutProject(ctx, models.Project{
		ProjectID: "proj-1", OwnerID: "maintainer", Name: "gitalong",
	}))

	det := testDetector(swipes, matches, profiles)
	queue := &queueStub{}
	svc := testSwipeService(swipes, profiles, queue)

	// Alice right-swipes project P: new recording, no match yet.
	result, err := svc.Record(ctx, session("alice"), "alice", "proj-1", models.TargetKindProject, models.SwipeRight)
	require.NoError(t, err)
	require.True(t, result.New)
	for _, job := range queue.jobs {
		require.NoError(t, det.CheckAndCreate(ctx, job.ActorID, job.TargetID, job.TargetKind))
	}
	assert.Empty(t, matches.byPair)

	// Owner accepts: detector finds alice's prior right-swipe.
	queue.jobs = nil
	result, err = svc.RecordAcceptance(ctx, session("maintainer"), "proj-1", "alice")
	require.NoError(t, err)
	require.True(t, result.New)
	for _, job := range queue.jobs {
		require.NoError(t, det.CheckAndCreate(ctx, job.ActorID, job.TargetID, job.TargetKind))
	}
	require.Len(t, matches.byPair, 1)
	created := matches.byPair[models.PairKey(models.TargetKindProject, "alice", "proj-1")]
	assert.Equal(t, models.MatchStatusActive, created.Status)

	// A later left-swipe overwrites the event but the match survives.
	queue.jobs = nil
	_, err = svc.Record(ctx, session("alice"), "alice", "proj-1", models.TargetKindProject, models.SwipeLeft)
	require.NoError(t, err)
	assert.Empty(t, queue.jobs)

	after := matches.byPair[models.PairKey(models.TargetKindProject, "alice", "proj-1")]
	assert.Equal(t, created.MatchID, after.MatchID)
	assert.Equal(t, models.MatchStatusActive, after.Status)
}
