package models

import "time"

// Token is an identity-provider credential with a freshness deadline.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Session identifies the authenticated caller of a write. The core
// never owns identity; it holds the actor id and the token the
// identity provider handed out.
type Session struct {
	ActorID   string
	Token     string
	ExpiresAt time.Time
}
