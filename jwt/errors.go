package jwtkit

import "fmt"

// MalformedTokenError indicates the token string is not a structurally valid
// JWT: wrong segment count, bad base64url, invalid JSON, or a well-known
// field of the wrong type. Tokens are untrusted input, so this is an
// expected rejection, not a bug.
type MalformedTokenError struct {
	Reason string
	Err    error
}

func (e *MalformedTokenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("jwt: malformed token: %s: %v", e.Reason, e.Err)
	}
	return "jwt: malformed token: " + e.Reason
}

func (e *MalformedTokenError) Unwrap() error { return e.Err }

// InvalidAlgorithmError indicates the token's alg header is missing,
// unsupported, or incompatible with the resolved key.
type InvalidAlgorithmError struct {
	TokenAlg string
	KeyAlg   string
	KeyType  string
}

func (e *InvalidAlgorithmError) Error() string {
	if e.TokenAlg == "" {
		return "jwt: missing alg in token header"
	}
	if e.KeyAlg != "" {
		return fmt.Sprintf("jwt: token alg %q does not match key alg %q", e.TokenAlg, e.KeyAlg)
	}
	return fmt.Sprintf("jwt: token alg %q is not compatible with key type %q", e.TokenAlg, e.KeyType)
}

// InvalidSignatureError indicates the cryptographic check of the token
// signature failed.
type InvalidSignatureError struct {
	Err error
}

func (e *InvalidSignatureError) Error() string {
	return fmt.Sprintf("jwt: invalid signature: %v", e.Err)
}

func (e *InvalidSignatureError) Unwrap() error { return e.Err }
