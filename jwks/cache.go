// Package jwkskit caches the published signing keys of trusted issuers and
// resolves a key by issuer and kid, fetching the issuer's JWKS document
// lazily on a miss. It never refreshes on a timer: a refetch is triggered
// only by an unresolved kid, which covers key rotation without background
// work.
package jwkskit

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
)

// FetchFunc retrieves and parses a key-set document. The default uses
// jwk.Fetch; tests substitute their own.
type FetchFunc func(ctx context.Context, uri string) (jwk.Set, error)

// Cache is a per-issuer key-set cache. An entry is always replaced as a
// whole unit; readers see either the old complete set or the new one.
// Concurrent fetch-capable resolutions for the same issuer share a single
// underlying fetch.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	flights map[string]*flight
	fetch   FetchFunc
	log     logrus.FieldLogger
}

type entry struct {
	set       jwk.Set
	fetchedAt time.Time
}

type flight struct {
	done chan struct{}
	err  error
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithFetch replaces the key-set fetcher.
func WithFetch(fn FetchFunc) CacheOption {
	return func(c *Cache) { c.fetch = fn }
}

// WithLogger attaches a logger for fetch and seed activity.
func WithLogger(log logrus.FieldLogger) CacheOption {
	return func(c *Cache) { c.log = log }
}

// NewCache builds an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		flights: make(map[string]*flight),
		fetch: func(ctx context.Context, uri string) (jwk.Set, error) {
			return jwk.Fetch(ctx, uri)
		},
		log: discardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Seed installs a caller-supplied key set for the issuer without fetching,
// overwriting any existing entry. Enables offline or pre-warmed operation.
func (c *Cache) Seed(issuer string, set jwk.Set) {
	c.mu.Lock()
	c.entries[issuer] = &entry{set: set, fetchedAt: time.Now()}
	c.mu.Unlock()
	c.log.WithField("issuer", issuer).Debug("seeded key set")
}

// SeedJSON parses a JWKS document and installs it for the issuer.
func (c *Cache) SeedJSON(issuer string, doc []byte) error {
	set, err := jwk.Parse(doc)
	if err != nil {
		return &JWKSFetchError{Err: err}
	}
	c.Seed(issuer, set)
	return nil
}

// ResolveSync looks the key up in the cache only. It never performs I/O;
// a missing entry or kid fails with SigningKeyNotCachedError.
func (c *Cache) ResolveSync(issuer, kid string) (jwk.Key, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[issuer]; e != nil {
		if key, ok := e.set.LookupKeyID(kid); ok {
			return key, nil
		}
	}
	return nil, &SigningKeyNotCachedError{Issuer: issuer, Kid: kid}
}

// Resolve returns the key for issuer/kid, fetching the key set from
// jwksURI on a miss. If a fetch for the issuer is already in flight the
// call awaits that same fetch rather than starting a second one. After a
// successful fetch the lookup is retried exactly once; a kid still absent
// fails with SigningKeyNotFoundError. Failed fetches are not cached.
func (c *Cache) Resolve(ctx context.Context, issuer, jwksURI, kid string) (jwk.Key, error) {
	c.mu.Lock()
	if e := c.entries[issuer]; e != nil {
		if key, ok := e.set.LookupKeyID(kid); ok {
			c.mu.Unlock()
			return key, nil
		}
	}

	f := c.flights[issuer]
	if f == nil {
		f = &flight{done: make(chan struct{})}
		c.flights[issuer] = f
		c.mu.Unlock()
		c.runFetch(ctx, issuer, jwksURI, f)
	} else {
		c.mu.Unlock()
		select {
		case <-f.done:
		case <-ctx.Done():
			// The shared fetch keeps running; other waiters may need it.
			return nil, ctx.Err()
		}
	}

	if f.err != nil {
		return nil, f.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.entries[issuer]; e != nil {
		if key, ok := e.set.LookupKeyID(kid); ok {
			return key, nil
		}
	}
	return nil, &SigningKeyNotFoundError{Issuer: issuer, Kid: kid}
}

func (c *Cache) runFetch(ctx context.Context, issuer, jwksURI string, f *flight) {
	c.log.WithFields(logrus.Fields{"issuer": issuer, "uri": jwksURI}).Debug("fetching key set")
	set, err := c.fetch(ctx, jwksURI)

	c.mu.Lock()
	if err != nil {
		f.err = &JWKSFetchError{URI: jwksURI, Err: err}
	} else {
		c.entries[issuer] = &entry{set: set, fetchedAt: time.Now()}
	}
	delete(c.flights, issuer)
	close(f.done)
	c.mu.Unlock()

	if err != nil {
		c.log.WithFields(logrus.Fields{"issuer": issuer, "uri": jwksURI}).WithError(err).Warn("key set fetch failed")
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
