package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitalong_server/models"
)

func seedMatch(t *testing.T, matches *memMatchStore, matchID, a, b string) models.Match {
	t.Helper()
	match := models.Match{
		PairKey:    models.PairKey(models.TargetKindUser, a, b),
		MatchID:    matchID,
		ActorA:     a,
		ActorB:     b,
		TargetKind: models.TargetKindUser,
		Status:     models.MatchStatusActive,
		CreatedAt:  models.FormatTimestamp(time.Now()),
	}
	require.NoError(t, matches.CreateIfAbsent(context.Background(), match))
	return match
}

func TestSetStatusByParticipant(t *testing.T) {
	matches := newMemMatchStore()
	seedMatch(t, matches, "m1", "alice", "bob")

	svc := NewMatchService(matches, zap.NewNop())
	updated, err := svc.SetStatus(context.Background(), session("bob"), "m1", models.MatchStatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusInactive, updated.Status)
}

func TestSetStatusRejectsOutsider(t *testing.T) {
	matches := newMemMatchStore()
	seedMatch(t, matches, "m1", "alice", "bob")

	svc := NewMatchService(matches, zap.NewNop())
	_, err := svc.SetStatus(context.Background(), session("mallory"), "m1", models.MatchStatusInactive)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetStatusUnknownMatch(t *testing.T) {
	svc := NewMatchService(newMemMatchStore(), zap.NewNop())
	_, err := svc.SetStatus(context.Background(), session("alice"), "m404", models.MatchStatusCompleted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	matches := newMemMatchStore()
	seedMatch(t, matches, "m1", "alice", "bob")

	svc := NewMatchService(matches, zap.NewNop())
	_, err := svc.SetStatus(context.Background(), session("alice"), "m1", models.MatchStatus("archived"))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestRematchIsStatusTransitionNotRecreate(t *testing.T) {
	matches := newMemMatchStore()
	created := seedMatch(t, matches, "m1", "alice", "bob")

	svc := NewMatchService(matches, zap.NewNop())
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, session("alice"), "m1", models.MatchStatusInactive)
	require.NoError(t, err)
	updated, err := svc.SetStatus(ctx, session("bob"), "m1", models.MatchStatusActive)
	require.NoError(t, err)

	assert.Equal(t, created.MatchID, updated.MatchID, "same document throughout")
	assert.Equal(t, 1, matches.creates)
}

func TestListForActor(t *testing.T) {
	matches := newMemMatchStore()
	seedMatch(t, matches, "m1", "alice", "bob")
	seedMatch(t, matches, "m2", "alice", "carol")
	seedMatch(t, matches, "m3", "dave", "erin")

	svc := NewMatchService(matches, zap.NewNop())
	list, err := svc.ListForActor(context.Background(), session("alice"))
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
