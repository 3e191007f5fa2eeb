package services

import (
	"context"

	"gitalong_server/models"
)

// The store interfaces below are the four-primitive contract the core
// needs from any document store: point lookup by composite key,
// conditional create (fail if key exists), conditional upsert that
// reports what it replaced, and an ordered range read for resumable
// replay. The production implementations live in dynamo_stores.go;
// tests run against an in-memory fake with the same compare-and-set
// semantics.

// SwipeEventStore persists swipe events at their natural key.
type SwipeEventStore interface {
	// Upsert writes the event, replacing any event at the same key in
	// one conditional round trip, and returns the replaced event (nil
	// on first recording).
	Upsert(ctx context.Context, event models.SwipeEvent) (*models.SwipeEvent, error)
	// Get is a point lookup; (nil, nil) when absent.
	Get(ctx context.Context, key models.SwipeKey) (*models.SwipeEvent, error)
}

// MatchRecordStore persists matches keyed by canonical pair key.
type MatchRecordStore interface {
	// CreateIfAbsent writes the match only if no match exists for its
	// pair key; ErrConflict otherwise. This store-level condition is
	// the only synchronization between the two racing detectors.
	CreateIfAbsent(ctx context.Context, match models.Match) error
	// GetByID resolves a match by its id; (nil, nil) when absent.
	GetByID(ctx context.Context, matchID string) (*models.Match, error)
	// SetStatus updates the lifecycle status of an existing match.
	SetStatus(ctx context.Context, pairKey string, status models.MatchStatus, at string) (*models.Match, error)
	// ListForActor returns every match the actor participates in.
	ListForActor(ctx context.Context, actorID string) ([]models.Match, error)
}

// MessageStore persists conversation messages in timestamp order.
type MessageStore interface {
	// Append stores the message; the (conversation, message key) pair
	// must not already exist.
	Append(ctx context.Context, msg models.Message) error
	// ListAfter returns messages with a sort key strictly greater than
	// afterKey, in ascending order. Empty afterKey replays everything.
	ListAfter(ctx context.Context, conversationID, afterKey string, limit int) ([]models.Message, error)
	// MarkRead flips the read flag on every message addressed to
	// receiverID in the conversation; returns how many were updated.
	MarkRead(ctx context.Context, conversationID, receiverID string) (int, error)
}

// ProfileStore is the peripheral CRUD boundary for profile and project
// documents.
type ProfileStore interface {
	GetProfile(ctx context.Context, actorID string) (*models.Profile, error)
	PutProfile(ctx context.Context, profile models.Profile) error
	DeleteProfile(ctx context.Context, actorID string) error
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	PutProject(ctx context.Context, project models.Project) error
	// ListProjects returns every swipeable project, for the
	// recommendation ranking.
	ListProjects(ctx context.Context) ([]models.Project, error)
}
