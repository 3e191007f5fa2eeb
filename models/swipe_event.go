package models

import (
	"fmt"
	"time"
)

// TargetKind is the kind of entity a swipe is aimed at.
type TargetKind string

const (
	TargetKindUser    TargetKind = "user"
	TargetKindProject TargetKind = "project"
)

// ValidTargetKind reports whether k is one of the supported kinds.
func ValidTargetKind(k TargetKind) bool {
	return k == TargetKindUser || k == TargetKindProject
}

// SwipeDirection is the direction of interest expressed by a swipe.
type SwipeDirection string

const (
	SwipeLeft  SwipeDirection = "left"
	SwipeRight SwipeDirection = "right"
)

// ValidSwipeDirection reports whether d is a supported direction.
func ValidSwipeDirection(d SwipeDirection) bool {
	return d == SwipeLeft || d == SwipeRight
}

// SwipeKey is the natural key of a swipe event: one event per
// (actor, target, kind) tuple.
type SwipeKey struct {
	ActorID  string
	TargetID string
	Kind     TargetKind
}

// PartitionKey returns the DynamoDB partition key for the event.
func (k SwipeKey) PartitionKey() string {
	return "ACTOR#" + k.ActorID
}

// SortKey returns the DynamoDB sort key for the event.
func (k SwipeKey) SortKey() string {
	return fmt.Sprintf("SWIPE#%s#%s", k.Kind, k.TargetID)
}

// SwipeEvent records a directional interest event from an actor toward
// a target. A later swipe on the same key overwrites the earlier one.
type SwipeEvent struct {
	PK         string         `dynamodbav:"PK" json:"-"`
	SK         string         `dynamodbav:"SK" json:"-"`
	ActorID    string         `dynamodbav:"actorId" json:"actorId"`
	TargetID   string         `dynamodbav:"targetId" json:"targetId"`
	TargetKind TargetKind     `dynamodbav:"targetKind" json:"targetKind"`
	Direction  SwipeDirection `dynamodbav:"direction" json:"direction"`
	CreatedAt  string         `dynamodbav:"createdAt" json:"createdAt"`
}

// NewSwipeEvent builds a SwipeEvent with its Dynamo keys populated.
func NewSwipeEvent(key SwipeKey, direction SwipeDirection, at time.Time) SwipeEvent {
	return SwipeEvent{
		PK:         key.PartitionKey(),
		SK:         key.SortKey(),
		ActorID:    key.ActorID,
		TargetID:   key.TargetID,
		TargetKind: key.Kind,
		Direction:  direction,
		CreatedAt:  at.UTC().Format(time.RFC3339Nano),
	}
}

// Key returns the natural key of the event.
func (e SwipeEvent) Key() SwipeKey {
	return SwipeKey{ActorID: e.ActorID, TargetID: e.TargetID, Kind: e.TargetKind}
}

// SwipeEventsTable is the DynamoDB table name for swipe events.
const SwipeEventsTable = "SwipeEvents"
