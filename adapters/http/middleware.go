// Package authhttp gates net/http handlers behind bearer-token verification
// and re-serves cached key sets.
package authhttp

import (
	"context"
	"net/http"
	"strings"

	jwtkit "github.com/tokenkit/tokenkit/jwt"
	"github.com/tokenkit/tokenkit/verify"
)

type contextKey struct{}

var claimsContextKey contextKey

// RequireAuth wraps next, rejecting requests without a valid bearer token.
// The verified payload is placed on the request context for ClaimsFromContext.
func RequireAuth(v *verify.Verifier, props *verify.Properties) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			payload, err := v.Verify(r.Context(), raw, props)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), claimsContextKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified token payload stored by RequireAuth.
func ClaimsFromContext(ctx context.Context) (map[string]any, bool) {
	payload, ok := ctx.Value(claimsContextKey).(map[string]any)
	return payload, ok
}

// JWKSHandler serves a key-set document, e.g. to republish a seeded set to
// downstream services on a private network.
func JWKSHandler(ks jwtkit.JWKS) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		jwtkit.ServeJWKS(w, r, ks)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
