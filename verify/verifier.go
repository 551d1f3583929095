// Package verify orchestrates token verification: decomposition, generic
// claims validation, issuer-to-key resolution through the key-set cache,
// cryptographic signature verification, and provider-specific claim checks
// through a pluggable profile. The payload is never returned to the caller
// until the signature and every claim check have succeeded.
package verify

import (
	"context"
	"io"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"

	"github.com/tokenkit/tokenkit/claims"
	jwkskit "github.com/tokenkit/tokenkit/jwks"
	jwtkit "github.com/tokenkit/tokenkit/jwt"
)

// Profile is a provider specialization hooked in strictly after signature
// verification. Implementations validate provider-specific claims such as
// Cognito's token_use or group membership.
type Profile interface {
	ValidateClaims(payload map[string]any, props *Properties) error
}

// IssuerConfig describes one trusted issuer. Issuer doubles as the expected
// iss claim and the lookup key; it must be unique within a verifier.
type IssuerConfig struct {
	Issuer  string
	JWKSURI string

	// Audience is the expected aud claim. A profile that checks audience
	// itself (Cognito does, via client id) sets this to claims.Disable()
	// so the two checks never conflict.
	Audience claims.Requirement

	// Scope lists scopes the token must carry one of. Empty skips the check.
	Scope []string

	// Profile adds provider-specific claim checks. Optional.
	Profile Profile
}

// Properties is per-call configuration layered over the issuer config.
type Properties struct {
	// Issuer selects the issuer config to verify against. Required when
	// more than one issuer is configured.
	Issuer string

	// Audience overrides the issuer config's audience expectation.
	Audience claims.Requirement

	// Scope overrides the issuer config's scope expectation.
	Scope []string

	// Leeway widens exp/nbf bounds symmetrically.
	Leeway time.Duration

	// IncludeRawToken attaches the decomposed token to errors raised by
	// the profile hook, which runs only after the signature has been
	// cryptographically validated. Lets operators log the rejected
	// token's claims without re-parsing.
	IncludeRawToken bool

	// Profile carries per-call options for the issuer's profile; the
	// profile implementation defines the concrete type.
	Profile any
}

// Verifier verifies tokens for one or more trusted issuers.
type Verifier struct {
	configs map[string]IssuerConfig
	single  string // issuer of the sole config; empty in multi-issuer mode
	cache   *jwkskit.Cache
	fetch   jwkskit.FetchFunc
	log     logrus.FieldLogger
	clock   func() time.Time
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithLogger attaches a logger; it is also passed to the key-set cache.
func WithLogger(log logrus.FieldLogger) Option {
	return func(v *Verifier) { v.log = log }
}

// WithClock overrides the time source for claim validation.
func WithClock(clock func() time.Time) Option {
	return func(v *Verifier) { v.clock = clock }
}

// WithFetch replaces the key-set fetcher used on cache misses.
func WithFetch(fn jwkskit.FetchFunc) Option {
	return func(v *Verifier) { v.fetch = fn }
}

// New builds a verifier for a single trusted issuer.
func New(cfg IssuerConfig, opts ...Option) (*Verifier, error) {
	return NewMulti([]IssuerConfig{cfg}, opts...)
}

// NewMulti builds a verifier trusting several issuers. The configs are
// normalized into one issuer-keyed map at construction; calls against a
// multi-issuer verifier must name the issuer in Properties.
func NewMulti(cfgs []IssuerConfig, opts ...Option) (*Verifier, error) {
	if len(cfgs) == 0 {
		return nil, &claims.ConfigurationError{Msg: "at least one issuer config is required"}
	}
	v := &Verifier{
		configs: make(map[string]IssuerConfig, len(cfgs)),
		clock:   time.Now,
		log:     discardLogger(),
	}
	for _, cfg := range cfgs {
		if cfg.Issuer == "" {
			return nil, &claims.ConfigurationError{Msg: "issuer must not be empty"}
		}
		if cfg.JWKSURI == "" {
			return nil, &claims.ConfigurationError{Msg: "jwks uri must not be empty for issuer " + cfg.Issuer}
		}
		if _, dup := v.configs[cfg.Issuer]; dup {
			return nil, &claims.ConfigurationError{Msg: "duplicate issuer " + cfg.Issuer}
		}
		v.configs[cfg.Issuer] = cfg
	}
	if len(cfgs) == 1 {
		v.single = cfgs[0].Issuer
	}
	for _, opt := range opts {
		opt(v)
	}
	cacheOpts := []jwkskit.CacheOption{jwkskit.WithLogger(v.log)}
	if v.fetch != nil {
		cacheOpts = append(cacheOpts, jwkskit.WithFetch(v.fetch))
	}
	v.cache = jwkskit.NewCache(cacheOpts...)
	return v, nil
}

// VerifySync verifies a token using cached keys only. It never performs
// I/O, so it is suitable for latency-sensitive paths once keys have been
// seeded via CacheJWKS or a prior Verify call.
func (v *Verifier) VerifySync(token string, props *Properties) (map[string]any, error) {
	return v.run(token, props, func(issuer, _, kid string) (jwk.Key, error) {
		return v.cache.ResolveSync(issuer, kid)
	})
}

// Verify verifies a token, fetching the issuer's key set on a cache miss.
// The fetch is the only step that can block; concurrent calls for the same
// uncached issuer share a single fetch.
func (v *Verifier) Verify(ctx context.Context, token string, props *Properties) (map[string]any, error) {
	return v.run(token, props, func(issuer, uri, kid string) (jwk.Key, error) {
		return v.cache.Resolve(ctx, issuer, uri, kid)
	})
}

// CacheJWKS seeds the key-set cache with a caller-supplied JWKS document.
// In multi-issuer mode the issuer argument is required; in single-issuer
// mode it may be empty.
func (v *Verifier) CacheJWKS(doc []byte, issuer string) error {
	if issuer == "" {
		if v.single == "" {
			return &claims.ConfigurationError{Msg: "multiple issuers configured; issuer is required to cache a key set"}
		}
		issuer = v.single
	}
	if _, ok := v.configs[issuer]; !ok {
		return &claims.ConfigurationError{Msg: "unknown issuer " + issuer}
	}
	return v.cache.SeedJSON(issuer, doc)
}

func (v *Verifier) run(token string, props *Properties, resolve func(issuer, uri, kid string) (jwk.Key, error)) (map[string]any, error) {
	if props == nil {
		props = &Properties{}
	}
	cfg, err := v.configFor(props.Issuer)
	if err != nil {
		return nil, err
	}

	d, err := jwtkit.Decompose(token)
	if err != nil {
		return nil, v.reject("decompose", err)
	}

	// Policy checks are pure computation; they run before any key work.
	if err := claims.Validate(d.Payload, v.policyFor(cfg, props)); err != nil {
		return nil, v.reject("claims", err)
	}

	if d.Header.Kid == "" {
		return nil, v.reject("key", &jwtkit.MalformedTokenError{Reason: "missing kid in token header"})
	}
	key, err := resolve(cfg.Issuer, cfg.JWKSURI, d.Header.Kid)
	if err != nil {
		return nil, v.reject("key", err)
	}

	if err := jwtkit.VerifySignature(d, key); err != nil {
		return nil, v.reject("signature", err)
	}

	if cfg.Profile != nil {
		if err := cfg.Profile.ValidateClaims(d.Payload, props); err != nil {
			// Enrichment only ever runs here, after the signature check.
			if props.IncludeRawToken {
				if en, ok := err.(interface {
					WithRawToken(*jwtkit.Decomposed) error
				}); ok {
					err = en.WithRawToken(d)
				}
			}
			return nil, v.reject("profile", err)
		}
	}

	return d.Payload, nil
}

func (v *Verifier) configFor(issuer string) (IssuerConfig, error) {
	if issuer == "" {
		if v.single == "" {
			return IssuerConfig{}, &claims.ConfigurationError{Msg: "multiple issuers configured; set Properties.Issuer"}
		}
		issuer = v.single
	}
	cfg, ok := v.configs[issuer]
	if !ok {
		return IssuerConfig{}, &claims.ConfigurationError{Msg: "unknown issuer " + issuer}
	}
	return cfg, nil
}

func (v *Verifier) policyFor(cfg IssuerConfig, props *Properties) claims.Policy {
	p := claims.Policy{
		Issuer:   claims.Require(cfg.Issuer),
		Audience: cfg.Audience,
		Scope:    cfg.Scope,
		Leeway:   props.Leeway,
		Clock:    v.clock,
	}
	if props.Audience.Specified() {
		p.Audience = props.Audience
	}
	if len(props.Scope) > 0 {
		p.Scope = props.Scope
	}
	return p
}

func (v *Verifier) reject(stage string, err error) error {
	v.log.WithField("stage", stage).WithError(err).Debug("token rejected")
	return err
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
