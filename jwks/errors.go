package jwkskit

import "fmt"

// SigningKeyNotCachedError indicates a cache-only resolution found no
// cached key set for the issuer, or no key with the requested kid.
// Fetch-capable resolution would have attempted a refetch instead.
type SigningKeyNotCachedError struct {
	Issuer string
	Kid    string
}

func (e *SigningKeyNotCachedError) Error() string {
	return fmt.Sprintf("jwks: no cached signing key %q for issuer %q", e.Kid, e.Issuer)
}

// SigningKeyNotFoundError indicates the kid was still absent after a
// fresh fetch of the issuer's key set. The one-shot refetch covers
// legitimate rotation; a kid that survives it is simply wrong.
type SigningKeyNotFoundError struct {
	Issuer string
	Kid    string
}

func (e *SigningKeyNotFoundError) Error() string {
	return fmt.Sprintf("jwks: signing key %q not found in key set of issuer %q", e.Kid, e.Issuer)
}

// JWKSFetchError wraps a transport or parse failure from fetching the
// issuer's key-set document. Failed fetches are not cached, so the next
// resolution retries.
type JWKSFetchError struct {
	URI string
	Err error
}

func (e *JWKSFetchError) Error() string {
	return fmt.Sprintf("jwks: fetching %s: %v", e.URI, e.Err)
}

func (e *JWKSFetchError) Unwrap() error { return e.Err }
