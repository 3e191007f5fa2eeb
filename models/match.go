package models

import (
	"strings"
	"time"
)

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchStatusActive    MatchStatus = "active"
	MatchStatusInactive  MatchStatus = "inactive"
	MatchStatusCompleted MatchStatus = "completed"
)

// ValidMatchStatus reports whether s is a supported status.
func ValidMatchStatus(s MatchStatus) bool {
	switch s {
	case MatchStatusActive, MatchStatusInactive, MatchStatusCompleted:
		return true
	}
	return false
}

// PairKey returns the canonical, order-independent key for an unordered
// pair of participants. The two ids are sorted so that both sides of a
// mutual swipe contend on the same key, and the key is qualified by the
// target kind so a user pair and a user/project pair never collide.
func PairKey(kind TargetKind, a, b string) string {
	x, y := a, b
	if strings.Compare(x, y) > 0 {
		x, y = y, x
	}
	return string(kind) + "#" + x + "#" + y
}

// Match is the materialized record of mutual interest between two
// participants. At most one Match exists per canonical pair key.
type Match struct {
	PairKey    string      `dynamodbav:"pairKey" json:"pairKey"`
	MatchID    string      `dynamodbav:"matchId" json:"matchId"`
	ActorA     string      `dynamodbav:"actorA" json:"actorA"`
	ActorB     string      `dynamodbav:"actorB" json:"actorB"`
	TargetKind TargetKind  `dynamodbav:"targetKind" json:"targetKind"`
	Status     MatchStatus `dynamodbav:"status" json:"status"`
	CreatedAt  string      `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt  string      `dynamodbav:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether actorID is one of the two participants.
func (m Match) HasParticipant(actorID string) bool {
	return m.ActorA == actorID || m.ActorB == actorID
}

// ConversationID returns the conversation identifier for the match.
// Messages for a match are keyed by the match id.
func (m Match) ConversationID() string {
	return m.MatchID
}

// FormatTimestamp renders t the way match and message timestamps are
// stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// MatchesTable is the DynamoDB table name for matches.
const MatchesTable = "Matches"

// MatchIDIndex is the GSI used to resolve a match by its id.
const MatchIDIndex = "matchId-index"
