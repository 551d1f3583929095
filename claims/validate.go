package claims

import (
	"strings"
	"time"

	jwtkit "github.com/tokenkit/tokenkit/jwt"
)

// Policy is the caller's expectation for the generic (provider-agnostic)
// claims of a token. Issuer and Audience are three-valued: leaving either
// unspecified is rejected at validation time.
type Policy struct {
	Issuer   Requirement
	Audience Requirement

	// Scope lists required scopes; the token's space-separated scope
	// claim must overlap it. Empty means no scope check.
	Scope []string

	// Leeway widens the exp and nbf bounds symmetrically to absorb
	// clock skew. Defaults to zero.
	Leeway time.Duration

	// Clock overrides the time source. Nil means time.Now.
	Clock func() time.Time
}

// Validate checks the decoded payload against the policy. Checks run in
// order: expiry, not-before, issuer, audience, scope; the first failure
// aborts. Time comparisons use seconds since epoch per the JWT
// numeric-date convention.
func Validate(payload map[string]any, p Policy) error {
	now := time.Now
	if p.Clock != nil {
		now = p.Clock
	}
	leeway := p.Leeway.Seconds()

	if exp, ok := jwtkit.NumberClaim(payload, "exp"); ok {
		t := now()
		if exp+leeway < float64(t.Unix()) {
			return &TokenExpiredError{ExpiresAt: time.Unix(int64(exp), 0), Now: t}
		}
	}
	if nbf, ok := jwtkit.NumberClaim(payload, "nbf"); ok {
		t := now()
		if nbf-leeway > float64(t.Unix()) {
			return &TokenNotYetValidError{NotBefore: time.Unix(int64(nbf), 0), Now: t}
		}
	}

	if !p.Issuer.Specified() {
		return &ConfigurationError{Msg: "issuer expectation not set; use Require(...) or Disable()"}
	}
	if !p.Issuer.Disabled() {
		iss, _ := jwtkit.StringClaim(payload, "iss")
		if !oneOf(iss, p.Issuer.Values()) {
			return &InvalidIssuerError{Got: iss, Want: p.Issuer.Values()}
		}
	}

	if !p.Audience.Specified() {
		return &ConfigurationError{Msg: "audience expectation not set; use Require(...) or Disable()"}
	}
	if !p.Audience.Disabled() {
		aud, _ := jwtkit.StringsClaim(payload, "aud")
		if !Overlaps(aud, p.Audience.Values()) {
			return &InvalidAudienceError{Got: aud, Want: p.Audience.Values()}
		}
	}

	if len(p.Scope) > 0 {
		raw, _ := jwtkit.StringClaim(payload, "scope")
		scopes := strings.Fields(raw)
		if !Overlaps(scopes, p.Scope) {
			return &InvalidScopeError{Got: scopes, Want: p.Scope}
		}
	}

	return nil
}
