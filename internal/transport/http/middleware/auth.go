package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtinfra "github.com/go-dataroom-api/internal/infrastructure/jwt"
)

type contextKey string

const ClaimsKey contextKey = "claims"

// SessionVerifier validates a Bearer session token.
type SessionVerifier interface {
	VerifySession(tokenStr string) (*jwtinfra.SessionClaims, error)
}

// OptionalAuth validates the Bearer JWT when one is present and injects its
// claims into context. Requests without a (valid) token pass through — the
// view endpoint serves anonymous visitors, and only preview assertions
// require a session, which the handler enforces.
func OptionalAuth(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") && verifier != nil {
				tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
				if claims, err := verifier.VerifySession(tokenStr); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), ClaimsKey, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClaimsFromContext extracts session claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.SessionClaims, bool) {
	c, ok := ctx.Value(ClaimsKey).(*jwtinfra.SessionClaims)
	return c, ok
}
