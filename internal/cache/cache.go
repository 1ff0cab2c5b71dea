package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultTTL is the freshness window used when none is configured.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned by a Store when no entry exists for the key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is one cached payload and the time it was written.
type Entry struct {
	Key       string    `json:"key"`
	Payload   string    `json:"payload"`
	Model     string    `json:"model,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a key/value backend. It knows nothing about expiry; Cache applies the TTL on read.
// Implementations must be safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, e Entry) error
	// Purge removes entries created before cutoff and reports how many were removed.
	Purge(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

// Cache enforces the TTL contract on top of a Store: a read never returns an entry older than TTL.
type Cache struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New wraps store with the given TTL. A non-positive ttl falls back to DefaultTTL.
func New(store Store, ttl time.Duration, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{store: store, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the entry for key if it exists and is no older than the TTL.
// Store failures are logged and reported as a miss.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	e, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("[WARN] cache get %s: %v", key, err)
		}
		return Entry{}, false
	}
	if c.now().Sub(e.CreatedAt) > c.ttl {
		return Entry{}, false
	}
	return e, true
}

// Put stores payload under key, overwriting any previous entry.
func (c *Cache) Put(ctx context.Context, key, payload, model string) error {
	e := Entry{Key: key, Payload: payload, Model: model, CreatedAt: c.now()}
	if err := c.store.Put(ctx, e); err != nil {
		return fmt.Errorf("cache put %s: %w", key, err)
	}
	return nil
}

// Purge drops expired entries from the backing store. Reads are correct without it.
func (c *Cache) Purge(ctx context.Context) (int, error) {
	n, err := c.store.Purge(ctx, c.now().Add(-c.ttl))
	if err != nil {
		return 0, fmt.Errorf("cache purge: %w", err)
	}
	return n, nil
}

// Close releases the backing store.
func (c *Cache) Close() error {
	return c.store.Close()
}
