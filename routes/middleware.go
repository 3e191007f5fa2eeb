package routes

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitalong_server/services"
)

// AuthMiddleware runs every request through the auth guard: the bearer
// token goes onto the context, the guard checks freshness (renewing
// when the provider supports it), and the resulting session is handed
// to the handlers. A failed guard check rejects the write before it
// reaches any store.
func AuthMiddleware(guard *services.AuthGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok {
				ctx = services.WithBearerToken(ctx, token)
			}

			session, err := guard.EnsureFresh(ctx)
			if err != nil {
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			ctx = services.WithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogging logs method, path, and duration for each request.
func RequestLogging(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
