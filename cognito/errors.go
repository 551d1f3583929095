package cognito

import (
	"fmt"

	jwtkit "github.com/tokenkit/tokenkit/jwt"
)

// InvalidGroupError indicates cognito:groups has no overlap with the
// required groups.
type InvalidGroupError struct {
	Got   []string
	Want  []string
	Token *jwtkit.Decomposed
}

func (e *InvalidGroupError) Error() string {
	return fmt.Sprintf("cognito: groups %v have no overlap with %v", e.Got, e.Want)
}

func (e *InvalidGroupError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}

// InvalidTokenUseError indicates token_use is not one of id/access, or
// does not match the configured expectation.
type InvalidTokenUseError struct {
	Got   string
	Want  []string
	Token *jwtkit.Decomposed
}

func (e *InvalidTokenUseError) Error() string {
	return fmt.Sprintf("cognito: token_use %q not in %v", e.Got, e.Want)
}

func (e *InvalidTokenUseError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}

// InvalidClientIDError indicates neither aud (id tokens) nor client_id
// (access tokens) matches the allowed client ids.
type InvalidClientIDError struct {
	Got   []string
	Want  []string
	Token *jwtkit.Decomposed
}

func (e *InvalidClientIDError) Error() string {
	return fmt.Sprintf("cognito: client id %v not in %v", e.Got, e.Want)
}

func (e *InvalidClientIDError) WithRawToken(d *jwtkit.Decomposed) error {
	c := *e
	c.Token = d
	return &c
}
