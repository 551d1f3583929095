// Package testing provides a mock token issuer for testing services that
// verify bearer tokens. It runs an HTTP server serving a JWKS document and
// signs tokens that validate against it, so integration tests need no real
// identity provider.
//
// Example usage:
//
//	issuer := testing.NewTestIssuer()
//	defer issuer.Close()
//
//	v, _ := verify.New(verify.IssuerConfig{
//		Issuer:   issuer.URL(),
//		JWKSURI:  issuer.JWKSURL(),
//		Audience: claims.Require(issuer.Audience()),
//	})
//
//	payload, err := v.Verify(ctx, issuer.CreateToken("user-123"), nil)
package testing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	jwtkit "github.com/tokenkit/tokenkit/jwt"
)

// TestIssuer is a complete mock identity provider: an httptest server
// exposing /.well-known/jwks.json plus RS256 token builders signed with the
// matching private key.
type TestIssuer struct {
	server   *httptest.Server
	signer   *jwtkit.RSASigner
	audience string
}

// NewTestIssuer creates a test issuer with a fresh RSA key pair.
// Call Close when done.
func NewTestIssuer() *TestIssuer {
	return NewTestIssuerWithAudience("test-app")
}

// NewTestIssuerWithAudience creates a test issuer whose tokens carry the
// given audience by default.
func NewTestIssuerWithAudience(audience string) *TestIssuer {
	signer, err := jwtkit.NewRSASigner(2048, "test-key-1")
	if err != nil {
		panic("failed to create RSA signer: " + err.Error())
	}

	ti := &TestIssuer{
		signer:   signer,
		audience: audience,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/jwks.json", ti.handleJWKS)

	ti.server = httptest.NewServer(mux)
	return ti
}

// URL returns the base URL of the issuer; use it as the expected iss.
func (ti *TestIssuer) URL() string {
	return ti.server.URL
}

// JWKSURL returns the key-set endpoint.
func (ti *TestIssuer) JWKSURL() string {
	return ti.server.URL + "/.well-known/jwks.json"
}

// Audience returns the default audience claim.
func (ti *TestIssuer) Audience() string {
	return ti.audience
}

// KID returns the id of the current signing key.
func (ti *TestIssuer) KID() string {
	return ti.signer.KID()
}

// JWKS returns the key-set document served by the issuer.
func (ti *TestIssuer) JWKS() jwtkit.JWKS {
	k := jwtkit.RSAPublicToJWK(ti.signer.PublicKey(), ti.signer.KID(), ti.signer.Algorithm())
	return jwtkit.JWKS{Keys: []jwtkit.JWK{k}}
}

// Close shuts down the test server.
func (ti *TestIssuer) Close() {
	if ti.server != nil {
		ti.server.Close()
	}
}

func (ti *TestIssuer) handleJWKS(w http.ResponseWriter, r *http.Request) {
	jwtkit.ServeJWKS(w, r, ti.JWKS())
}

// CreateToken creates a signed token for the given subject with one hour
// of validity.
func (ti *TestIssuer) CreateToken(subject string) string {
	return ti.CreateTokenWithClaims(subject, nil)
}

// CreateTokenWithClaims creates a signed token merging extra claims over
// the standard set (sub, iss, aud, exp, iat, jti).
func (ti *TestIssuer) CreateTokenWithClaims(subject string, extraClaims map[string]any) string {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": subject,
		"iss": ti.URL(),
		"aud": ti.audience,
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	for k, v := range extraClaims {
		claims[k] = v
	}

	token, err := ti.signer.Sign(context.Background(), claims)
	if err != nil {
		panic("failed to sign token: " + err.Error())
	}
	return token
}

// CreateTokenWithScope creates a signed token carrying a space-separated
// scope claim.
func (ti *TestIssuer) CreateTokenWithScope(subject, scope string) string {
	return ti.CreateTokenWithClaims(subject, map[string]any{"scope": scope})
}

// CreateTokenWithExpiry creates a signed token with a custom expiry.
func (ti *TestIssuer) CreateTokenWithExpiry(subject string, expiry time.Time) string {
	return ti.CreateTokenWithClaims(subject, map[string]any{"exp": expiry.Unix()})
}

// CreateExpiredToken creates a token that expired an hour ago.
func (ti *TestIssuer) CreateExpiredToken(subject string) string {
	return ti.CreateTokenWithExpiry(subject, time.Now().Add(-time.Hour))
}

// CreateAccessToken creates a Cognito-shaped access token: token_use
// "access", a client_id claim, and no aud.
func (ti *TestIssuer) CreateAccessToken(subject, clientID string, groups []string) string {
	extra := map[string]any{
		"token_use": "access",
		"client_id": clientID,
	}
	if len(groups) > 0 {
		extra["cognito:groups"] = groups
	}
	return ti.createWithoutAud(subject, extra)
}

// CreateIDToken creates a Cognito-shaped id token: token_use "id" with the
// client id as audience.
func (ti *TestIssuer) CreateIDToken(subject, clientID string, groups []string) string {
	extra := map[string]any{
		"token_use": "id",
		"aud":       clientID,
	}
	if len(groups) > 0 {
		extra["cognito:groups"] = groups
	}
	return ti.CreateTokenWithClaims(subject, extra)
}

func (ti *TestIssuer) createWithoutAud(subject string, extraClaims map[string]any) string {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": subject,
		"iss": ti.URL(),
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	for k, v := range extraClaims {
		claims[k] = v
	}

	token, err := ti.signer.Sign(context.Background(), claims)
	if err != nil {
		panic("failed to sign token: " + err.Error())
	}
	return token
}
