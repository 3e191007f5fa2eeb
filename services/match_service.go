package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitalong_server/models"
)

// MatchService owns the match lifecycle after creation. Creation
// itself belongs to the detector alone; this service only reads
// matches and moves them between statuses. Unmatch-and-rematch is a
// status transition, never a delete-and-recreate.
type MatchService struct {
	Matches MatchRecordStore
	Log     *zap.Logger

	now func() time.Time
}

// NewMatchService wires the lifecycle service over its store.
func NewMatchService(matches MatchRecordStore, log *zap.Logger) *MatchService {
	return &MatchService{Matches: matches, Log: log, now: time.Now}
}

// Get returns the match by id; ErrNotFound when absent. Only a
// participant may read it.
func (s *MatchService) Get(ctx context.Context, session models.Session, matchID string) (*models.Match, error) {
	if matchID == "" {
		return nil, ErrInvalidArgument
	}

	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNotFound
	}
	if !match.HasParticipant(session.ActorID) {
		return nil, ErrForbidden
	}
	return match, nil
}

// SetStatus moves the match to a new lifecycle status. Only a
// participant of the match may change it.
func (s *MatchService) SetStatus(ctx context.Context, session models.Session, matchID string, status models.MatchStatus) (*models.Match, error) {
	if matchID == "" || !models.ValidMatchStatus(status) {
		return nil, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return nil, ErrUnauthenticated
	}

	match, err := s.Matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNotFound
	}
	if !match.HasParticipant(session.ActorID) {
		return nil, ErrForbidden
	}

	updated, err := s.Matches.SetStatus(ctx, match.PairKey, status, models.FormatTimestamp(s.clock()()))
	if err != nil {
		return nil, err
	}

	if s.Log != nil {
		s.Log.Info("match status changed",
			zap.String("matchId", matchID),
			zap.String("status", string(status)),
			zap.String("actorId", session.ActorID))
	}
	return updated, nil
}

// ListForActor returns every match the session's actor participates in.
func (s *MatchService) ListForActor(ctx context.Context, session models.Session) ([]models.Match, error) {
	if session.ActorID == "" {
		return nil, ErrUnauthenticated
	}
	return s.Matches.ListForActor(ctx, session.ActorID)
}

func (s *MatchService) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}
