package services

import (
	"context"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"gitalong_server/models"
)

const (
	defaultFreshnessMargin = 5 * time.Minute
	defaultRefreshTimeout  = 10 * time.Second
)

// AuthGuard gates every state-mutating operation in the core. It
// checks the remaining validity window of the caller's token and
// proactively renews it through the identity provider when the window
// drops below the safety margin, so stale-token writes fail here with
// ErrUnauthenticated instead of downstream with an opaque permission
// error.
type AuthGuard struct {
	Identity       IdentityProvider
	Margin         time.Duration
	RefreshTimeout time.Duration
	Log            *zap.Logger

	now func() time.Time
}

// NewAuthGuard builds a guard with the default margin and timeout.
func NewAuthGuard(identity IdentityProvider, log *zap.Logger) *AuthGuard {
	return &AuthGuard{
		Identity:       identity,
		Margin:         defaultFreshnessMargin,
		RefreshTimeout: defaultRefreshTimeout,
		Log:            log,
		now:            time.Now,
	}
}

// EnsureFresh returns the authenticated session, renewing the token
// first if its remaining validity is inside the safety margin. Exactly
// one renewal is attempted; if it fails or times out the write never
// happens and the caller gets ErrUnauthenticated.
func (g *AuthGuard) EnsureFresh(ctx context.Context) (models.Session, error) {
	if g.Identity == nil {
		return models.Session{}, ErrUnauthenticated
	}

	actorID, err := g.Identity.CurrentActor(ctx)
	if err != nil || actorID == "" {
		return models.Session{}, ErrUnauthenticated
	}

	token, err := g.Identity.Token(ctx, false)
	if err != nil {
		return models.Session{}, ErrUnauthenticated
	}

	expiresAt := g.expiry(token)
	if g.remaining(expiresAt) <= g.margin() {
		refreshCtx, cancel := context.WithTimeout(ctx, g.refreshTimeout())
		token, err = g.Identity.Token(refreshCtx, true)
		cancel()
		if err != nil {
			if g.Log != nil {
				g.Log.Warn("token renewal failed",
					zap.String("actorId", actorID),
					zap.Error(err))
			}
			return models.Session{}, ErrUnauthenticated
		}
		expiresAt = g.expiry(token)
		if g.remaining(expiresAt) <= 0 {
			return models.Session{}, ErrUnauthenticated
		}
	}

	return models.Session{ActorID: actorID, Token: token.Value, ExpiresAt: expiresAt}, nil
}

// expiry returns the token deadline, falling back to the JWT exp claim
// when the provider gave no hint. The claim is read unverified: the
// provider already vouched for the token, this is only a deadline.
func (g *AuthGuard) expiry(token models.Token) time.Time {
	if !token.ExpiresAt.IsZero() {
		return token.ExpiresAt
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token.Value, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

func (g *AuthGuard) remaining(expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() {
		return 0
	}
	return expiresAt.Sub(g.clock()())
}

func (g *AuthGuard) margin() time.Duration {
	if g.Margin > 0 {
		return g.Margin
	}
	return defaultFreshnessMargin
}

func (g *AuthGuard) refreshTimeout() time.Duration {
	if g.RefreshTimeout > 0 {
		return g.RefreshTimeout
	}
	return defaultRefreshTimeout
}

func (g *AuthGuard) clock() func() time.Time {
	if g.now != nil {
		return g.now
	}
	return time.Now
}
