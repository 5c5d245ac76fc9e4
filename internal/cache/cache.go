// Package cache provides the in-memory TTL caches behind the status
// endpoints: one for the upstream listing, one for normalized reports.
//
// Entries are never evicted. A stale entry stays in place until a refetch
// succeeds, so the last good value can be served while upstream is down.
package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"voxlis/internal/logging"
)

// Status describes how a GetOrFetch result was produced. The values are
// sent to clients in the X-Cache header.
type Status string

const (
	Hit   Status = "HIT"
	Miss  Status = "MISS"
	Stale Status = "STALE"
)

// Observer receives one call per GetOrFetch.
type Observer interface {
	ObserveCache(cache string, status Status)
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now      func() time.Time
	surface  func(error) bool
	observer Observer
	logger   *slog.Logger
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithSurface marks errors that must reach the caller even when a stale
// value exists (e.g. "this executor no longer exists").
func WithSurface(fn func(error) bool) Option {
	return func(o *options) { o.surface = fn }
}

// WithObserver reports hit/miss/stale outcomes.
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache is a keyed TTL cache safe for concurrent use.
type Cache[V any] struct {
	name    string
	opts    options
	mu      sync.Mutex
	entries map[string]entry[V]
	group   singleflight.Group
}

// New returns an empty cache. name labels log lines and metrics.
func New[V any](name string, opts ...Option) *Cache[V] {
	o := options{now: time.Now, surface: func(error) bool { return false }}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}
	return &Cache[V]{name: name, opts: o, entries: make(map[string]entry[V])}
}

// Get returns the stored value for key regardless of age, with the time it
// was stored.
func (c *Cache[V]) Get(key string) (V, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, e.storedAt, ok
}

// Set stores v under key, replacing any previous entry.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, storedAt: c.opts.now()}
}

// Len returns the number of stored entries, fresh or stale.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetOrFetch returns the value for key if it was stored less than ttl ago.
// Otherwise it calls fetch, stores a successful result and returns it.
// Concurrent misses on one key share a single fetch.
//
// When fetch fails and an older value exists, that value is returned with
// status Stale and a nil error, unless the error is one WithSurface marks.
// A failed fetch never modifies the cache.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) (V, error)) (V, Status, error) {
	prev, storedAt, ok := c.Get(key)
	if ok && c.opts.now().Sub(storedAt) < ttl {
		c.observe(Hit)
		return prev, Hit, nil
	}

	// The shared fetch outlives any one caller's cancellation; the HTTP
	// client timeout bounds it instead.
	shared := context.WithoutCancel(ctx)
	res, err, _ := c.group.Do(key, func() (any, error) {
		v, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})
	if err == nil {
		c.observe(Miss)
		v, _ := res.(V)
		return v, Miss, nil
	}

	if ok && !c.opts.surface(err) {
		c.opts.logger.WarnContext(ctx, "serving stale value", "cache", c.name, "key", key,
			"age", c.opts.now().Sub(storedAt).Round(time.Second), "error", err)
		c.observe(Stale)
		return prev, Stale, nil
	}

	c.observe(Miss)
	var zero V
	return zero, Miss, err
}

func (c *Cache[V]) observe(s Status) {
	if c.opts.observer != nil {
		c.opts.observer.ObserveCache(c.name, s)
	}
}
