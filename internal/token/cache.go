package token

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/camholmes12/pgiamauth/internal/logging"
	"github.com/camholmes12/pgiamauth/pkg/pgiamauth"
)

// entry binds a token to its issuance time. Freshness is purely time-based:
// an entry older than the TTL is indistinguishable from an absent one.
type entry struct {
	token    string
	issuedAt time.Time
}

// Cache serves authentication tokens for connection identities, minting
// through the wrapped TokenGenerator on miss or expiry.
//
// Concurrency contract:
//   - a fresh entry is returned without touching the generator;
//   - at most one generation is in flight per identity, regardless of the
//     number of concurrent callers: late arrivals wait on the in-flight
//     call and share its result;
//   - distinct identities never serialize against each other;
//   - a failed generation is delivered to every waiter of that attempt and
//     leaves no cache entry behind, so the next call starts fresh.
type Cache struct {
	generator pgiamauth.TokenGenerator
	ttl       time.Duration
	logger    pgiamauth.Logger
	now       func() time.Time

	group   singleflight.Group
	mu      sync.Mutex
	entries map[pgiamauth.ConnectionIdentity]entry
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides the reuse window for cached tokens.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithLogger routes the cache's diagnostic output to logger.
func WithLogger(logger pgiamauth.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithNowFunc substitutes the time source used for TTL bookkeeping.
// Tests use it to step across expiry boundaries deterministically.
func WithNowFunc(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a Cache around generator. Tokens are reused for
// pgiamauth.DefaultTokenTTL unless WithTTL overrides it.
func NewCache(generator pgiamauth.TokenGenerator, opts ...CacheOption) *Cache {
	c := &Cache{
		generator: generator,
		ttl:       pgiamauth.DefaultTokenTTL,
		logger:    logging.NewNullLogger(),
		now:       time.Now,
		entries:   make(map[pgiamauth.ConnectionIdentity]entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a token for identity, minting one if no fresh entry exists.
// Generator failures come back as *pgiamauth.AuthError with the cause
// preserved; they are never cached.
func (c *Cache) Get(ctx context.Context, identity pgiamauth.ConnectionIdentity) (string, error) {
	if tok, ok := c.lookup(identity); ok {
		c.logger.Verbose("token cache hit for %s", identity)
		return tok, nil
	}

	v, err, _ := c.group.Do(flightKey(identity), func() (interface{}, error) {
		// A caller that raced with a completed flight lands here after the
		// winner already stored a fresh token.
		if tok, ok := c.lookup(identity); ok {
			return tok, nil
		}

		started := time.Now()
		tok, err := c.generator.GenerateToken(ctx, identity)
		if err != nil {
			c.logger.Verbose("token generation for %s failed after %s", identity, time.Since(started).Round(time.Millisecond))
			return nil, err
		}

		c.store(identity, tok)
		c.logger.Verbose("token generated for %s by %s in %s", identity, c.generator, time.Since(started).Round(time.Millisecond))
		return tok, nil
	})
	if err != nil {
		return "", &pgiamauth.AuthError{Identity: identity, Err: err}
	}
	return v.(string), nil
}

// lookup returns the cached token for identity if it is still fresh.
func (c *Cache) lookup(identity pgiamauth.ConnectionIdentity) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[identity]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.issuedAt) >= c.ttl {
		return "", false
	}
	return e.token, true
}

// store records a freshly minted token, refreshing any prior entry in place.
func (c *Cache) store(identity pgiamauth.ConnectionIdentity, tok string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identity] = entry{token: tok, issuedAt: c.now()}
}

// flightKey renders an identity as a singleflight key. Newline does not
// occur in hostnames, ports, regions, or sane usernames, so distinct
// identities get distinct keys.
func flightKey(identity pgiamauth.ConnectionIdentity) string {
	return identity.Region + "\n" + identity.Host + "\n" + identity.Port + "\n" + identity.Username
}
