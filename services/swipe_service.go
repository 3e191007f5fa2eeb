package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitalong_server/models"
)

// DetectionJob asks the match worker to re-check reciprocity for a
// freshly recorded right-swipe.
type DetectionJob struct {
	ActorID    string
	TargetID   string
	TargetKind models.TargetKind
}

// DetectionQueue decouples match detection from the swipe write. The
// swipe has already succeeded by the time a job is enqueued; detection
// is a best-effort secondary consequence with its own retry budget.
type DetectionQueue interface {
	Enqueue(job DetectionJob) bool
}

// RecordResult reports whether a recording was the first event at its
// key or an overwrite of an earlier swipe.
type RecordResult struct {
	New   bool              `json:"new"`
	Event models.SwipeEvent `json:"event"`
}

// SwipeService records directional interest events. One event per
// (actor, target, kind) tuple; a repeat swipe overwrites in place.
type SwipeService struct {
	Swipes   SwipeEventStore
	Profiles ProfileStore
	Detector DetectionQueue
	Log      *zap.Logger

	now func() time.Time
}

// NewSwipeService wires a recorder over its stores and detection queue.
func NewSwipeService(swipes SwipeEventStore, profiles ProfileStore, detector DetectionQueue, log *zap.Logger) *SwipeService {
	return &SwipeService{
		Swipes:   swipes,
		Profiles: profiles,
		Detector: detector,
		Log:      log,
		now:      time.Now,
	}
}

// Record upserts the swipe event at its natural key in a single
// conditional write and, when this is the first recording of a
// right-swipe, hands the pair to the detector. A caller may only
// record swipes as the actor its session authenticates.
func (s *SwipeService) Record(ctx context.Context, session models.Session, actorID, targetID string, kind models.TargetKind, direction models.SwipeDirection) (RecordResult, error) {
	if actorID == "" || targetID == "" || actorID == targetID {
		return RecordResult{}, ErrInvalidArgument
	}
	if !models.ValidTargetKind(kind) || !models.ValidSwipeDirection(direction) {
		return RecordResult{}, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return RecordResult{}, ErrUnauthenticated
	}
	if session.ActorID != actorID {
		return RecordResult{}, ErrForbidden
	}

	key := models.SwipeKey{ActorID: actorID, TargetID: targetID, Kind: kind}
	event := models.NewSwipeEvent(key, direction, s.clock()())

	previous, err := s.Swipes.Upsert(ctx, event)
	if err != nil {
		return RecordResult{}, err
	}

	result := RecordResult{New: previous == nil, Event: event}

	// Only a first recording of a right-swipe can complete a pair;
	// re-recording an existing one must not re-trigger detection.
	if result.New && direction == models.SwipeRight {
		s.enqueueDetection(DetectionJob{ActorID: actorID, TargetID: targetID, TargetKind: kind})
	}
	return result, nil
}

// RecordAcceptance records the project-side reciprocal event: the
// project's maintainer accepts an interested contributor, which is
// stored as the project's right-swipe toward that user. Only the
// project owner may accept.
func (s *SwipeService) RecordAcceptance(ctx context.Context, session models.Session, projectID, userID string) (RecordResult, error) {
	if projectID == "" || userID == "" {
		return RecordResult{}, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return RecordResult{}, ErrUnauthenticated
	}

	project, err := s.Profiles.GetProject(ctx, projectID)
	if err != nil {
		return RecordResult{}, err
	}
	if project == nil {
		return RecordResult{}, ErrNotFound
	}
	if project.OwnerID != session.ActorID {
		return RecordResult{}, ErrForbidden
	}

	// Acceptance is the project's half of a project pairing, so the
	// event carries the project kind just like the contributor's swipe.
	key := models.SwipeKey{ActorID: projectID, TargetID: userID, Kind: models.TargetKindProject}
	event := models.NewSwipeEvent(key, models.SwipeRight, s.clock()())

	previous, err := s.Swipes.Upsert(ctx, event)
	if err != nil {
		return RecordResult{}, err
	}

	result := RecordResult{New: previous == nil, Event: event}
	if result.New {
		s.enqueueDetection(DetectionJob{ActorID: projectID, TargetID: userID, TargetKind: models.TargetKindProject})
	}
	return result, nil
}

func (s *SwipeService) enqueueDetection(job DetectionJob) {
	if s.Detector == nil {
		return
	}
	if !s.Detector.Enqueue(job) && s.Log != nil {
		s.Log.Warn("detection queue full, dropping job",
			zap.String("actorId", job.ActorID),
			zap.String("targetId", job.TargetID),
			zap.String("targetKind", string(job.TargetKind)))
	}
}

func (s *SwipeService) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}
