package library

import (
	"context"
	"strings"
	"sync"
	"time"

	"research-library-be/internal/entity"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTTL     = 5 * time.Minute
	DefaultCleanup = 10 * time.Minute
)

// Cache holds list, item and per-source snapshots for every scope. Entries
// expire a fixed window after they were fetched; patching an entry keeps its
// original deadline.
//
// Concurrent misses on one key share a single backend call. Each scope carries
// a version that mutations bump, so a fetch that started before a write never
// stores its (older) result over the patched entry.
type Cache struct {
	store  *cache.Cache
	flight singleflight.Group

	mu       sync.Mutex
	versions map[string]uint64
}

func NewCache(ttl, cleanup time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cleanup <= 0 {
		cleanup = DefaultCleanup
	}
	return &Cache{
		store:    cache.New(ttl, cleanup),
		versions: make(map[string]uint64),
	}
}

// load returns the cached value for key or runs fetch once for every caller
// currently missing it. A nil value from fetch is returned but not stored.
func (c *Cache) load(ctx context.Context, scope Scope, kind entity.Kind, key string, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if v, ok := c.store.Get(key); ok {
		cacheRequests.WithLabelValues(string(kind), "hit").Inc()
		return v, nil
	}

	v, err, shared := c.flight.Do(key, func() (interface{}, error) {
		if v, ok := c.store.Get(key); ok {
			return v, nil
		}

		version := c.version(scope)
		backendFetches.WithLabelValues(string(kind), string(scope.Mode)).Inc()

		// Waiters share this call, so one caller going away must not fail the rest.
		v, err := fetch(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, nil
		}

		c.mu.Lock()
		if c.versions[scope.String()] == version {
			c.store.Set(key, v, cache.DefaultExpiration)
		}
		c.mu.Unlock()
		return v, nil
	})

	result := "miss"
	if shared {
		result = "shared"
	}
	cacheRequests.WithLabelValues(string(kind), result).Inc()
	return v, err
}

func (c *Cache) version(scope Scope) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[scope.String()]
}

// peek reads an entry without fetching.
func (c *Cache) peek(key string) (interface{}, bool) {
	return c.store.Get(key)
}

// mutate runs fn with the scope locked and invalidates in-flight fetches for it.
func (c *Cache) mutate(scope Scope, fn func(tx *cacheTx)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.versions[scope.String()]++
	fn(&cacheTx{c: c, scope: scope})
}

// Invalidate drops every entry of the scope.
func (c *Cache) Invalidate(scope Scope) {
	c.mutate(scope, func(tx *cacheTx) {
		tx.deletePrefix(scope.prefix())
	})
}

// Flush drops everything.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.versions {
		c.versions[k]++
	}
	c.store.Flush()
}

func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// cacheTx is the view handed to mutate callbacks; c.mu is held.
type cacheTx struct {
	c     *Cache
	scope Scope
}

// update replaces the value of an existing entry, keeping its deadline.
// Missing or expired entries are left alone; the next read fetches them.
func (tx *cacheTx) update(key string, fn func(v interface{}) interface{}) {
	tx.c.flight.Forget(key)
	v, exp, ok := tx.c.store.GetWithExpiration(key)
	if !ok {
		return
	}
	ttl := cache.NoExpiration
	if !exp.IsZero() {
		ttl = time.Until(exp)
		if ttl <= 0 {
			tx.c.store.Delete(key)
			return
		}
	}
	tx.c.store.Set(key, fn(v), ttl)
}

func (tx *cacheTx) set(key string, v interface{}) {
	tx.c.flight.Forget(key)
	tx.c.store.Set(key, v, cache.DefaultExpiration)
}

func (tx *cacheTx) delete(key string) {
	tx.c.flight.Forget(key)
	tx.c.store.Delete(key)
}

func (tx *cacheTx) keysWithPrefix(prefix string) []string {
	var keys []string
	for k := range tx.c.store.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (tx *cacheTx) deletePrefix(prefix string) {
	for _, k := range tx.keysWithPrefix(prefix) {
		tx.delete(k)
	}
}
