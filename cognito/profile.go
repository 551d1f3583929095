package cognito

import (
	"github.com/tokenkit/tokenkit/claims"
	jwtkit "github.com/tokenkit/tokenkit/jwt"
	"github.com/tokenkit/tokenkit/verify"
)

// Options configures the Cognito claim checks. TokenUse and ClientID are
// three-valued like the generic policy fields: leaving either unspecified
// is rejected at verification time.
type Options struct {
	// TokenUse is the expected token_use claim, "id" or "access".
	// Disable() accepts either.
	TokenUse claims.Requirement

	// ClientID lists the allowed app client ids. For id tokens the aud
	// claim is matched against it; for access tokens, which carry no
	// standard aud, the client_id claim is matched instead.
	ClientID claims.Requirement

	// Groups lists required cognito:groups; empty skips the check.
	Groups []string
}

// Profile implements verify.Profile for Cognito user pools. A call may
// override the construction-time options by passing *Options in
// Properties.Profile.
type Profile struct {
	opts Options
}

// NewProfile builds a Cognito claim profile with default options.
func NewProfile(opts Options) *Profile {
	return &Profile{opts: opts}
}

// ValidateClaims checks the Cognito-specific claims. The engine invokes it
// only after signature verification has succeeded.
func (p *Profile) ValidateClaims(payload map[string]any, props *verify.Properties) error {
	opts := p.opts
	if o, ok := props.Profile.(*Options); ok && o != nil {
		opts = *o
	}

	if len(opts.Groups) > 0 {
		groups, _ := jwtkit.StringsClaim(payload, "cognito:groups")
		if !claims.Overlaps(groups, opts.Groups) {
			return &InvalidGroupError{Got: groups, Want: opts.Groups}
		}
	}

	use, _ := jwtkit.StringClaim(payload, "token_use")
	if use != "id" && use != "access" {
		return &InvalidTokenUseError{Got: use, Want: []string{"id", "access"}}
	}
	if !opts.TokenUse.Specified() {
		return &claims.ConfigurationError{Msg: "cognito token_use expectation not set; use Require(...) or Disable()"}
	}
	if !opts.TokenUse.Disabled() && !claims.Overlaps([]string{use}, opts.TokenUse.Values()) {
		return &InvalidTokenUseError{Got: use, Want: opts.TokenUse.Values()}
	}

	if !opts.ClientID.Specified() {
		return &claims.ConfigurationError{Msg: "cognito client id expectation not set; use Require(...) or Disable()"}
	}
	if !opts.ClientID.Disabled() {
		if use == "id" {
			aud, _ := jwtkit.StringsClaim(payload, "aud")
			if !claims.Overlaps(aud, opts.ClientID.Values()) {
				return &InvalidClientIDError{Got: aud, Want: opts.ClientID.Values()}
			}
		} else {
			cid, _ := jwtkit.StringClaim(payload, "client_id")
			if !claims.Overlaps([]string{cid}, opts.ClientID.Values()) {
				return &InvalidClientIDError{Got: []string{cid}, Want: opts.ClientID.Values()}
			}
		}
	}

	return nil
}

// NewVerifier builds a single-issuer verifier for a user pool. The generic
// audience check is disabled because the profile checks client id against
// aud/client_id itself.
func NewVerifier(poolID string, opts Options, vopts ...verify.Option) (*verify.Verifier, error) {
	ep, err := ParsePoolID(poolID)
	if err != nil {
		return nil, err
	}
	cfg := verify.IssuerConfig{
		Issuer:   ep.Issuer,
		JWKSURI:  ep.JWKSURI,
		Audience: claims.Disable(),
		Profile:  NewProfile(opts),
	}
	return verify.New(cfg, vopts...)
}
