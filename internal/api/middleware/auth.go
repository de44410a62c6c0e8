package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mcoot/watchlist/internal/api/apierr"
	"github.com/mcoot/watchlist/internal/metrics"
	"github.com/mcoot/watchlist/internal/services/auth"
)

type contextKey string

const principalContextKey contextKey = "principal"

// Auth creates the authentication gate.
// Requests without a valid bearer token for an existing user are rejected with 401;
// the specific failure reason is only logged and counted.
func Auth(authService *auth.Service, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := authService.Authenticate(r.Context(), extractToken(r))
			if err != nil {
				if apierr.Status(err) == http.StatusUnauthorized {
					reason := auth.FailureReason(err)
					m.RecordAuthFailure(reason)
					zerolog.Ctx(r.Context()).Debug().Str("reason", reason).Msg("request not authenticated")
				} else {
					zerolog.Ctx(r.Context()).Error().Err(err).Msg("authentication failed")
				}
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			ctx = zerolog.Ctx(ctx).With().Str("user_id", string(principal.UserID())).Logger().WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the Authorization header
func extractToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// GetPrincipal returns the authenticated principal from the request context
func GetPrincipal(ctx context.Context) *auth.Principal {
	principal, _ := ctx.Value(principalContextKey).(*auth.Principal)
	return principal
}

// MustGetPrincipal returns the authenticated principal or panics
func MustGetPrincipal(ctx context.Context) *auth.Principal {
	principal := GetPrincipal(ctx)
	if principal == nil {
		panic("no principal in context - auth middleware not applied?")
	}
	return principal
}
