package jwtkit

import (
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
)

// algKeyTypes maps the supported signature algorithms to the JWK key type
// each one requires. Symmetric (HS*) algorithms are deliberately absent:
// a token claiming one against a published key set is an algorithm-confusion
// attempt and must be rejected.
var algKeyTypes = map[string]jwa.KeyType{
	"RS256": jwa.RSA,
	"RS384": jwa.RSA,
	"RS512": jwa.RSA,
	"PS256": jwa.RSA,
	"PS384": jwa.RSA,
	"PS512": jwa.RSA,
	"ES256": jwa.EC,
	"ES384": jwa.EC,
	"ES512": jwa.EC,
	"EdDSA": jwa.OKP,
}

// VerifySignature checks the token signature against the resolved key.
// The header alg must be an asymmetric algorithm compatible with the key's
// declared kty/alg/use. The check runs over the original encoded
// headerB64.payloadB64 bytes so a re-encoding difference can never
// desynchronize signature and content.
func VerifySignature(d *Decomposed, key jwk.Key) error {
	alg := d.Header.Alg
	if alg == "" {
		return &InvalidAlgorithmError{}
	}
	wantKty, ok := algKeyTypes[alg]
	if !ok {
		return &InvalidAlgorithmError{TokenAlg: alg, KeyType: key.KeyType().String()}
	}
	if key.KeyType() != wantKty {
		return &InvalidAlgorithmError{TokenAlg: alg, KeyType: key.KeyType().String()}
	}
	if keyAlg := key.Algorithm().String(); keyAlg != "" && keyAlg != alg {
		return &InvalidAlgorithmError{TokenAlg: alg, KeyAlg: keyAlg}
	}
	if use := key.KeyUsage(); use != "" && use != string(jwk.ForSignature) {
		return &InvalidAlgorithmError{TokenAlg: alg, KeyAlg: key.Algorithm().String(), KeyType: key.KeyType().String()}
	}

	compact := d.SigningInput() + "." + d.SignatureB64
	if _, err := jws.Verify([]byte(compact), jws.WithKey(jwa.SignatureAlgorithm(alg), key)); err != nil {
		return &InvalidSignatureError{Err: err}
	}
	return nil
}
