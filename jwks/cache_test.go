package jwkskit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	jwtkit "github.com/tokenkit/tokenkit/jwt"
)

const testIssuer = "https://issuer.example.com"
const testURI = testIssuer + "/.well-known/jwks.json"

func keySetDoc(t *testing.T, kids ...string) []byte {
	t.Helper()
	ks := jwtkit.JWKS{}
	for _, kid := range kids {
		signer, err := jwtkit.NewRSASigner(2048, kid)
		if err != nil {
			t.Fatalf("NewRSASigner: %v", err)
		}
		ks.Keys = append(ks.Keys, jwtkit.RSAPublicToJWK(signer.PublicKey(), kid, signer.Algorithm()))
	}
	doc, err := json.Marshal(ks)
	if err != nil {
		t.Fatalf("marshal jwks: %v", err)
	}
	return doc
}

func keySet(t *testing.T, kids ...string) jwk.Set {
	t.Helper()
	set, err := jwk.Parse(keySetDoc(t, kids...))
	if err != nil {
		t.Fatalf("parse jwks: %v", err)
	}
	return set
}

func TestSeedAndResolveSync(t *testing.T) {
	c := NewCache()
	c.Seed(testIssuer, keySet(t, "key-a"))

	key, err := c.ResolveSync(testIssuer, "key-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.KeyID() != "key-a" {
		t.Errorf("kid = %q, want key-a", key.KeyID())
	}

	var notCached *SigningKeyNotCachedError
	if _, err := c.ResolveSync(testIssuer, "key-b"); !errors.As(err, &notCached) {
		t.Errorf("unknown kid: got %v, want SigningKeyNotCachedError", err)
	}
	if _, err := c.ResolveSync("https://other.example.com", "key-a"); !errors.As(err, &notCached) {
		t.Errorf("unknown issuer: got %v, want SigningKeyNotCachedError", err)
	}
}

func TestSeedOverwritesWholeSet(t *testing.T) {
	c := NewCache()
	c.Seed(testIssuer, keySet(t, "key-a"))
	c.Seed(testIssuer, keySet(t, "key-b"))

	if _, err := c.ResolveSync(testIssuer, "key-b"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	var notCached *SigningKeyNotCachedError
	if _, err := c.ResolveSync(testIssuer, "key-a"); !errors.As(err, &notCached) {
		t.Errorf("old key survived replacement: %v", err)
	}
}

func TestResolveFetchesOnMiss(t *testing.T) {
	var calls int32
	c := NewCache(WithFetch(func(ctx context.Context, uri string) (jwk.Set, error) {
		atomic.AddInt32(&calls, 1)
		if uri != testURI {
			t.Errorf("uri = %q, want %q", uri, testURI)
		}
		return keySet(t, "key-a"), nil
	}))

	key, err := c.Resolve(context.Background(), testIssuer, testURI, "key-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.KeyID() != "key-a" {
		t.Errorf("kid = %q", key.KeyID())
	}

	// Second resolution hits the cache.
	if _, err := c.Resolve(context.Background(), testIssuer, testURI, "key-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestResolveRefetchesOnUnknownKid(t *testing.T) {
	var calls int32
	c := NewCache(WithFetch(func(ctx context.Context, uri string) (jwk.Set, error) {
		atomic.AddInt32(&calls, 1)
		// Simulates rotation: the provider now publishes key-b.
		return keySet(t, "key-b"), nil
	}))
	c.Seed(testIssuer, keySet(t, "key-a"))

	key, err := c.Resolve(context.Background(), testIssuer, testURI, "key-b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.KeyID() != "key-b" {
		t.Errorf("kid = %q", key.KeyID())
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}

	// A kid the refetched set still lacks fails after exactly one more
	// fetch, not a retry loop.
	var notFound *SigningKeyNotFoundError
	if _, err := c.Resolve(context.Background(), testIssuer, testURI, "key-c"); !errors.As(err, &notFound) {
		t.Fatalf("got %v, want SigningKeyNotFoundError", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("fetch calls = %d, want 2", n)
	}
}

func TestResolveFetchFailureNotCached(t *testing.T) {
	var calls int32
	c := NewCache(WithFetch(func(ctx context.Context, uri string) (jwk.Set, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return nil, fmt.Errorf("connection refused")
		}
		return keySet(t, "key-a"), nil
	}))

	var fetchErr *JWKSFetchError
	if _, err := c.Resolve(context.Background(), testIssuer, testURI, "key-a"); !errors.As(err, &fetchErr) {
		t.Fatalf("got %v, want JWKSFetchError", err)
	}

	// The failure is not cached; the next call retries and succeeds.
	if _, err := c.Resolve(context.Background(), testIssuer, testURI, "key-a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("fetch calls = %d, want 2", n)
	}
}

func TestResolveCoalescesConcurrentFetches(t *testing.T) {
	const n = 16
	var calls int32
	release := make(chan struct{})
	set := keySet(t, "key-a")
	c := NewCache(WithFetch(func(ctx context.Context, uri string) (jwk.Set, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return set, nil
	}))

	var wg sync.WaitGroup
	errs := make([]error, n)
	kids := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := c.Resolve(context.Background(), testIssuer, testURI, "key-a")
			errs[i] = err
			if err == nil {
				kids[i] = key.KeyID()
			}
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight fetch, then
	// let it complete.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("call %d: unexpected error: %v", i, errs[i])
		} else if kids[i] != "key-a" {
			t.Errorf("call %d: kid = %q", i, kids[i])
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}

func TestResolveWaiterCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	set := keySet(t, "key-a")
	c := NewCache(WithFetch(func(ctx context.Context, uri string) (jwk.Set, error) {
		close(started)
		<-release
		return set, nil
	}))

	go func() {
		_, _ = c.Resolve(context.Background(), testIssuer, testURI, "key-a")
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	waiterErr := make(chan error, 1)
	go func() {
		_, err := c.Resolve(ctx, testIssuer, testURI, "key-a")
		waiterErr <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-waiterErr; !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}

	// The shared fetch was not cancelled; once it completes the key is
	// available synchronously.
	close(release)
	deadline := time.Now().Add(time.Second)
	for {
		if _, err := c.ResolveSync(testIssuer, "key-a"); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("fetched key set never became visible")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSeedJSONRejectsGarbage(t *testing.T) {
	c := NewCache()
	var fetchErr *JWKSFetchError
	if err := c.SeedJSON(testIssuer, []byte("not json")); !errors.As(err, &fetchErr) {
		t.Errorf("got %v, want JWKSFetchError", err)
	}
}
