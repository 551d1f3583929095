// Package authgin gates gin routes behind bearer-token verification.
package authgin

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tokenkit/tokenkit/verify"
)

const claimsKey = "tokenkit.claims"

// RequireAuth rejects requests without a valid bearer token. On success the
// verified payload is stored in the gin context for handlers to read via
// Claims.
func RequireAuth(v *verify.Verifier, props *verify.Properties) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.Request)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		payload, err := v.Verify(c.Request.Context(), raw, props)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, payload)
		c.Next()
	}
}

// Claims returns the verified token payload stored by RequireAuth.
func Claims(c *gin.Context) (map[string]any, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	payload, ok := v.(map[string]any)
	return payload, ok
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
