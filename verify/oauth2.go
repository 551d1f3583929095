package verify

import (
	"context"

	"golang.org/x/oauth2"
)

// VerifyAccessToken verifies the access token carried by an oauth2 token,
// for services that receive tokens through the oauth2 library rather than
// a raw Authorization header.
func (v *Verifier) VerifyAccessToken(ctx context.Context, tok *oauth2.Token, props *Properties) (map[string]any, error) {
	return v.Verify(ctx, tok.AccessToken, props)
}
