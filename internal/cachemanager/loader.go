package cachemanager

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats counts Loader lookups.
type Stats struct {
	Hits   uint64
	Misses uint64
}

type loaderConfig struct {
	ttl     time.Duration
	sliding bool
	bypass  bool
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderConfig)

// WithTTL sets the expiry of values the Loader stores. Zero means the cache's
// default expiration.
func WithTTL(d time.Duration) LoaderOption {
	return func(c *loaderConfig) { c.ttl = d }
}

// WithSlidingExpiry pushes an entry's expiry back by the TTL on every hit.
func WithSlidingExpiry() LoaderOption {
	return func(c *loaderConfig) { c.sliding = true }
}

// Bypass makes every Get call load directly when skip is true.
func Bypass(skip bool) LoaderOption {
	return func(c *loaderConfig) { c.bypass = skip }
}

// Loader is a read-through view of a CacheManager: misses are filled by load.
// Errors from load are returned and never cached.
type Loader[K ~string, V any] struct {
	cache  CacheManager[K, V]
	load   func(ctx context.Context, key K) (V, error)
	cfg    loaderConfig
	hits   atomic.Uint64
	misses atomic.Uint64
}

func NewLoader[K ~string, V any](cache CacheManager[K, V], load func(ctx context.Context, key K) (V, error), opts ...LoaderOption) *Loader[K, V] {
	l := &Loader[K, V]{cache: cache, load: load}
	for _, opt := range opts {
		opt(&l.cfg)
	}
	return l
}

// Get returns the value for key and whether it was served from the cache.
func (l *Loader[K, V]) Get(ctx context.Context, key K) (V, bool, error) {
	if !l.cfg.bypass {
		if v, ok := l.lookup(ctx, key); ok {
			l.hits.Add(1)
			return v, true, nil
		}
	}
	l.misses.Add(1)

	v, err := l.load(ctx, key)
	if err != nil || l.cfg.bypass {
		return v, false, err
	}
	l.cache.Set(ctx, key, v, l.cfg.ttl)
	return v, false, nil
}

func (l *Loader[K, V]) lookup(ctx context.Context, key K) (V, bool) {
	if l.cfg.sliding {
		return l.cache.GetWithRefresh(ctx, key, l.cfg.ttl)
	}
	return l.cache.Get(ctx, key)
}

// Invalidate drops keys so the next Get loads them again.
func (l *Loader[K, V]) Invalidate(ctx context.Context, keys ...K) error {
	return l.cache.Delete(ctx, keys...)
}

func (l *Loader[K, V]) Stats() Stats {
	return Stats{Hits: l.hits.Load(), Misses: l.misses.Load()}
}
