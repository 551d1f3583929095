package claims

import (
	"fmt"
	"strings"
	"time"

	jwtkit "github.com/tokenkit/tokenkit/jwt"
)

// ConfigurationError indicates caller misuse: a policy field left
// unspecified where an explicit choice is required, an unregistered issuer,
// or a malformed provider identifier. It is never retried.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "claims: configuration: " + e.Msg }

// TokenExpiredError indicates exp (plus leeway) is in the past.
type TokenExpiredError struct {
	ExpiresAt time.Time
	Now       time.Time
	Token     *jwtkit.Decomposed
}

func (e *TokenExpiredError) Error() string {
	return fmt.Sprintf("claims: token expired at %s (now %s)", e.ExpiresAt.UTC().Format(time.RFC3339), e.Now.UTC().Format(time.RFC3339))
}

func (e *TokenExpiredError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}

// TokenNotYetValidError indicates nbf (minus leeway) is in the future.
type TokenNotYetValidError struct {
	NotBefore time.Time
	Now       time.Time
	Token     *jwtkit.Decomposed
}

func (e *TokenNotYetValidError) Error() string {
	return fmt.Sprintf("claims: token not valid before %s (now %s)", e.NotBefore.UTC().Format(time.RFC3339), e.Now.UTC().Format(time.RFC3339))
}

func (e *TokenNotYetValidError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}

// InvalidIssuerError indicates iss does not match the allowed issuers.
type InvalidIssuerError struct {
	Got   string
	Want  []string
	Token *jwtkit.Decomposed
}

func (e *InvalidIssuerError) Error() string {
	return fmt.Sprintf("claims: issuer %q not in %v", e.Got, e.Want)
}

func (e *InvalidIssuerError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}

// InvalidAudienceError indicates aud has no overlap with the allowed set.
type InvalidAudienceError struct {
	Got   []string
	Want  []string
	Token *jwtkit.Decomposed
}

func (e *InvalidAudienceError) Error() string {
	return fmt.Sprintf("claims: audience %v has no overlap with %v", e.Got, e.Want)
}

func (e *InvalidAudienceError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}

// InvalidScopeError indicates the scope claim has no overlap with the
// required scopes.
type InvalidScopeError struct {
	Got   []string
	Want  []string
	Token *jwtkit.Decomposed
}

func (e *InvalidScopeError) Error() string {
	return fmt.Sprintf("claims: scope %q has no overlap with %v", strings.Join(e.Got, " "), e.Want)
}

func (e *InvalidScopeError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}
