// Package cognito specializes the verification engine for AWS Cognito user
// pools: it derives the issuer and key-set URI from a pool id and validates
// the Cognito-specific claims (token_use, cognito:groups, client_id).
package cognito

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tokenkit/tokenkit/claims"
)

// The region grammar is loose on purpose: anything shaped like
// word-...-word-digit is accepted, not just current AWS region names.
var poolIDPattern = regexp.MustCompile(`^(\w+-)+\d_[0-9A-Za-z]+$`)

// Endpoints holds the issuer and key-set location derived from a pool id.
type Endpoints struct {
	Issuer  string
	JWKSURI string
}

// ParsePoolID validates a user pool id of the form <region>_<id> and
// derives the pool's issuer and JWKS URI.
func ParsePoolID(poolID string) (Endpoints, error) {
	if !poolIDPattern.MatchString(poolID) {
		return Endpoints{}, &claims.ConfigurationError{Msg: fmt.Sprintf("invalid Cognito user pool id %q", poolID)}
	}
	region := poolID[:strings.LastIndexByte(poolID, '_')]
	issuer := fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, poolID)
	return Endpoints{
		Issuer:  issuer,
		JWKSURI: issuer + "/.well-known/jwks.json",
	}, nil
}
