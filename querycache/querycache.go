// Package querycache is the key-addressed cache of completed and in-flight
// data operations.
//
// Keys are deterministic functions of their logical query parameters, so two
// calls with identical parameters always resolve to the same entry. Reads
// return fresh data immediately, return stale data while a background refetch
// runs, or block on the first fetch. Mutations invalidate declared key
// families; the auth coordinator purges everything on sign-out.
package querycache

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chimerakang/hotspot-go/apierror"
	"github.com/chimerakang/hotspot-go/metrics"
	"golang.org/x/sync/singleflight"
)

// Default staleness windows. Operational data (active sessions, dashboard)
// goes stale in seconds; reference data (plans, groups, tenants) in minutes.
const (
	TTLOperational = 20 * time.Second
	TTLReference   = 5 * time.Minute
)

// Key addresses one cache entry: a resource family, an optional resource id,
// and an optional filter set.
type Key struct {
	Family  string
	ID      string
	Filters map[string]string
}

// String renders the canonical form. Filter keys are sorted so identical
// parameter sets always produce identical strings.
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(k.Family)
	if k.ID != "" {
		b.WriteByte('/')
		b.WriteString(k.ID)
	}
	if len(k.Filters) > 0 {
		names := make([]string, 0, len(k.Filters))
		for name := range k.Filters {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteByte('?')
		for i, name := range names {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(k.Filters[name])
		}
	}
	return b.String()
}

// FetchFunc loads the value for a key from the backend.
type FetchFunc func(ctx context.Context) (any, error)

// entry records the cached value and the TTL it was stored under; that TTL
// governs when the entry goes stale, regardless of what later reads pass.
type entry struct {
	value     any
	fetchedAt time.Time
	ttl       time.Duration
}

// Cache is the request cache. Construct one per process.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
	sf      singleflight.Group
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures the Cache.
type Option func(*Cache)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// withClock overrides the time source in tests.
func withClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		logger:  slog.Default(),
		metrics: metrics.New(false),
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the value for key. A fresh entry is returned as-is; a stale
// entry is returned immediately while a background refetch replaces it; a
// missing entry blocks until the first fetch completes. Concurrent fetches of
// the same key are collapsed.
//
// Staleness is judged against the TTL the entry was stored with; ttl applies
// to whatever this call fetches.
func (c *Cache) Get(ctx context.Context, key Key, ttl time.Duration, fetch FetchFunc) (any, error) {
	ks := key.String()

	c.mu.RLock()
	e, ok := c.entries[ks]
	var value any
	var fresh bool
	if ok {
		value = e.value
		fresh = c.now().Sub(e.fetchedAt) < e.ttl
	}
	c.mu.RUnlock()

	if ok {
		if fresh {
			c.metrics.RecordCacheHit("fresh")
			return value, nil
		}
		c.metrics.RecordCacheHit("stale")
		// Serve stale, refetch in the background. The background fetch must
		// survive the caller's cancellation; a newer write to the same key
		// simply overwrites.
		bg := context.WithoutCancel(ctx)
		go func() {
			if _, err := c.fetchInto(bg, ks, ttl, fetch); err != nil {
				c.logger.Debug("background refetch failed", "key", ks, "err", err)
			}
		}()
		return value, nil
	}

	c.metrics.RecordCacheMiss()
	return c.fetchInto(ctx, ks, ttl, fetch)
}

// Peek returns the entry for key without triggering any fetch.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return nil, false
	}
	return e.value, true
}

// fetchInto runs fetch through singleflight and stores the result. Transient
// failures are retried exactly once; 4xx-class failures are not.
func (c *Cache) fetchInto(ctx context.Context, ks string, ttl time.Duration, fetch FetchFunc) (any, error) {
	v, err, _ := c.sf.Do(ks, func() (any, error) {
		value, err := fetch(ctx)
		if err != nil && apierror.Retryable(err) {
			value, err = fetch(ctx)
		}
		if err != nil {
			return nil, apierror.FromAny(err)
		}

		c.mu.Lock()
		c.entries[ks] = &entry{value: value, fetchedAt: c.now(), ttl: ttl}
		size := len(c.entries)
		c.mu.Unlock()
		c.metrics.SetCacheSize(float64(size))
		return value, nil
	})
	if err != nil {
		return nil, apierror.FromAny(err)
	}
	return v, nil
}

// Set stores a value directly, as after a mutation whose response carries the
// fresh record.
func (c *Cache) Set(key Key, value any, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key.String()] = &entry{value: value, fetchedAt: c.now(), ttl: ttl}
	size := len(c.entries)
	c.mu.Unlock()
	c.metrics.SetCacheSize(float64(size))
}

// Invalidate drops the single entry for key.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	delete(c.entries, key.String())
	size := len(c.entries)
	c.mu.Unlock()
	c.metrics.RecordCacheEviction("invalidate")
	c.metrics.SetCacheSize(float64(size))
}

// InvalidateFamily drops every entry belonging to the given families. The
// next read of any dropped key reports a miss and refetches.
func (c *Cache) InvalidateFamily(families ...string) {
	c.mu.Lock()
	for ks := range c.entries {
		for _, fam := range families {
			if ks == fam || strings.HasPrefix(ks, fam+"/") || strings.HasPrefix(ks, fam+"?") {
				delete(c.entries, ks)
				break
			}
		}
	}
	size := len(c.entries)
	c.mu.Unlock()
	c.metrics.RecordCacheEviction("invalidate")
	c.metrics.SetCacheSize(float64(size))
}

// PurgeAll drops every entry. Called synchronously with the sign-out state
// flip so no in-flight query can repopulate another user's data afterward:
// anything that lands later lands under keys the next read will refetch.
func (c *Cache) PurgeAll() {
	c.mu.Lock()
	c.entries = make(map[string]*entry)
	c.mu.Unlock()
	c.metrics.RecordCacheEviction("purge")
	c.metrics.SetCacheSize(0)
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// AutoRefresh refetches key every interval until ctx is cancelled. Used for
// fast-changing operational families (active sessions) that should stay warm
// without a consumer-driven read.
func (c *Cache) AutoRefresh(ctx context.Context, key Key, ttl, interval time.Duration, fetch FetchFunc) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := c.fetchInto(ctx, key.String(), ttl, fetch); err != nil {
					c.logger.Debug("auto refresh failed", "key", key.String(), "err", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
