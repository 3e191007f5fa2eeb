package services

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitalong_server/models"
)

// ReciprocityRule decides what event counts as the reciprocal of a
// right-swipe. User pairings mirror symmetrically; project pairings
// treat the maintainer's acceptance, stored as the project's
// right-swipe toward the user, as the reciprocal event.
type ReciprocityRule interface {
	Mirror(actorID, targetID string, kind models.TargetKind) models.SwipeKey
}

// MirroredSwipeRule is the default rule: the reciprocal of a
// right-swipe is the target's right-swipe back under the same pairing
// kind.
type MirroredSwipeRule struct{}

func (MirroredSwipeRule) Mirror(actorID, targetID string, kind models.TargetKind) models.SwipeKey {
	return models.SwipeKey{ActorID: targetID, TargetID: actorID, Kind: kind}
}

const (
	defaultDetectorAttempts = 3
	defaultDetectorBackoff  = 100 * time.Millisecond
)

// MutualMatchDetector checks a freshly recorded right-swipe for a
// reciprocal event and materializes the match. Both participants'
// devices may run this concurrently; the store's conditional create on
// the canonical pair key admits exactly one winner, and the loser's
// rejection is treated as success.
type MutualMatchDetector struct {
	Swipes   SwipeEventStore
	Matches  MatchRecordStore
	Profiles ProfileStore
	Rule     ReciprocityRule
	Log      *zap.Logger

	Attempts int
	Backoff  time.Duration

	now func() time.Time
}

// NewMutualMatchDetector wires a detector with the default rule and
// retry budget.
func NewMutualMatchDetector(swipes SwipeEventStore, matches MatchRecordStore, profiles ProfileStore, log *zap.Logger) *MutualMatchDetector {
	return &MutualMatchDetector{
		Swipes:   swipes,
		Matches:  matches,
		Profiles: profiles,
		Rule:     MirroredSwipeRule{},
		Log:      log,
		Attempts: defaultDetectorAttempts,
		Backoff:  defaultDetectorBackoff,
		now:      time.Now,
	}
}

// CheckAndCreate looks up the reciprocal event for a new right-swipe
// and, if present, creates the match exactly once. No reciprocity is
// the common case and costs a single point lookup. The reciprocity
// check always reads the store, never a cache: the decision must hold
// at write time.
func (d *MutualMatchDetector) CheckAndCreate(ctx context.Context, actorID, targetID string, kind models.TargetKind) error {
	if actorID == "" || targetID == "" || !models.ValidTargetKind(kind) {
		return ErrInvalidArgument
	}

	mirror := d.rule().Mirror(actorID, targetID, kind)
	reciprocal, err := d.Swipes.Get(ctx, mirror)
	if err != nil {
		return err
	}
	if reciprocal == nil || reciprocal.Direction != models.SwipeRight {
		return nil
	}

	if err := d.dependenciesExist(ctx, actorID, targetID, kind); err != nil {
		return err
	}

	now := d.clock()()
	match := models.Match{
		PairKey:    models.PairKey(kind, actorID, targetID),
		MatchID:    uuid.New().String(),
		ActorA:     actorID,
		ActorB:     targetID,
		TargetKind: kind,
		Status:     models.MatchStatusActive,
		CreatedAt:  models.FormatTimestamp(now),
		UpdatedAt:  models.FormatTimestamp(now),
	}

	err = d.Matches.CreateIfAbsent(ctx, match)
	if errors.Is(err, ErrConflict) {
		// The other participant's detector won the race. Idempotent
		// outcome, not an error.
		if d.Log != nil {
			d.Log.Debug("match already exists", zap.String("pairKey", match.PairKey))
		}
		return nil
	}
	if err != nil {
		return err
	}

	if d.Log != nil {
		d.Log.Info("match created",
			zap.String("pairKey", match.PairKey),
			zap.String("matchId", match.MatchID))
	}
	return nil
}

// CheckAndCreateWithRetry runs CheckAndCreate, retrying transient
// failures with jittered exponential backoff. Match creation is what
// the user is waiting to see, so it gets a small retry budget; every
// other failure is final.
func (d *MutualMatchDetector) CheckAndCreateWithRetry(ctx context.Context, actorID, targetID string, kind models.TargetKind) error {
	attempts := d.Attempts
	if attempts <= 0 {
		attempts = defaultDetectorAttempts
	}
	backoff := d.Backoff
	if backoff <= 0 {
		backoff = defaultDetectorBackoff
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := backoff << (attempt - 1)
			delay += time.Duration(rand.Int63n(int64(delay) + 1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = d.CheckAndCreate(ctx, actorID, targetID, kind)
		if err == nil || !IsTransient(err) {
			return err
		}
		if d.Log != nil {
			d.Log.Warn("match detection attempt failed",
				zap.Int("attempt", attempt+1),
				zap.String("actorId", actorID),
				zap.String("targetId", targetID),
				zap.Error(err))
		}
	}
	return err
}

// dependenciesExist confirms the referenced documents still exist. A
// missing profile or project means the match must not be created.
func (d *MutualMatchDetector) dependenciesExist(ctx context.Context, actorID, targetID string, kind models.TargetKind) error {
	if kind == models.TargetKindUser {
		for _, id := range []string{actorID, targetID} {
			profile, err := d.Profiles.GetProfile(ctx, id)
			if err != nil {
				return err
			}
			if profile == nil {
				return ErrDependencyMissing
			}
		}
		return nil
	}

	// Project pairing: one side is the project, the other the user;
	// which is which depends on whether the job came from the swipe or
	// the acceptance.
	projectID, userID := targetID, actorID
	project, err := d.Profiles.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		projectID, userID = actorID, targetID
		project, err = d.Profiles.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
	}
	if project == nil {
		return ErrDependencyMissing
	}

	profile, err := d.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrDependencyMissing
	}
	return nil
}

func (d *MutualMatchDetector) rule() ReciprocityRule {
	if d.Rule != nil {
		return d.Rule
	}
	return MirroredSwipeRule{}
}

func (d *MutualMatchDetector) clock() func() time.Time {
	if d.now != nil {
		return d.now
	}
	return time.Now
}
