package services

import (
	"context"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"gitalong_server/models"
)

// IdentityProvider is the slice of the identity collaborator the match
// core depends on: who is calling, and a token with a freshness
// deadline. forceRefresh asks the provider for a renewed credential.
type IdentityProvider interface {
	CurrentActor(ctx context.Context) (string, error)
	Token(ctx context.Context, forceRefresh bool) (models.Token, error)
}

type ctxKey int

const (
	bearerTokenKey ctxKey = iota
	sessionKey
)

// WithBearerToken stores the caller's raw bearer token on the context
// for the request-scoped identity provider to pick up.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerTokenKey, token)
}

// BearerTokenFromContext returns the raw bearer token, if any.
func BearerTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey).(string)
	return token, ok && token != ""
}

// WithSession stores an authenticated session on the context.
func WithSession(ctx context.Context, session models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the authenticated session, if any.
func SessionFromContext(ctx context.Context) (models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(models.Session)
	return session, ok
}

// BearerIdentity is the server-side identity provider: it reads the
// caller's bearer token off the request context and verifies it as an
// HS256 JWT. It cannot mint renewed credentials, so a token inside the
// freshness margin fails closed and the client re-authenticates.
type BearerIdentity struct {
	secret []byte
	now    func() time.Time
}

// NewBearerIdentity builds a provider verifying tokens against secret.
func NewBearerIdentity(secret string) *BearerIdentity {
	return &BearerIdentity{secret: []byte(secret), now: time.Now}
}

func (b *BearerIdentity) claims(ctx context.Context) (*jwt.RegisteredClaims, error) {
	raw, ok := BearerTokenFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return b.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(b.now))
	if err != nil || token == nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	if strings.TrimSpace(claims.Subject) == "" || claims.ExpiresAt == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// CurrentActor returns the subject of the verified bearer token.
func (b *BearerIdentity) CurrentActor(ctx context.Context) (string, error) {
	claims, err := b.claims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Token returns the verified bearer token and its expiry. Renewal is
// the client's job; a forced refresh always fails here.
func (b *BearerIdentity) Token(ctx context.Context, forceRefresh bool) (models.Token, error) {
	if forceRefresh {
		return models.Token{}, ErrUnauthenticated
	}
	claims, err := b.claims(ctx)
	if err != nil {
		return models.Token{}, err
	}
	raw, _ := BearerTokenFromContext(ctx)
	return models.Token{Value: raw, ExpiresAt: claims.ExpiresAt.Time}, nil
}
