package permit

import (
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"
)

// ------------------------------
// Cached Engine
// ------------------------------

const cacheKeySep = "\x1f"

// CacheConfig sizes the decision cache.
type CacheConfig struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	TTL         time.Duration
}

// DefaultCacheConfig returns sizing suitable for most embedded use.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		NumCounters: 100_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
		TTL:         time.Minute,
	}
}

// CachedEngine wraps an Engine with a ristretto cache over Enforce results.
// Only requests whose values are all strings are cached. The engine's
// mutation hook clears the cache, so any policy change that commits through
// the engine invalidates cached decisions regardless of which method applied
// it. This covers the management API, the role-management API, filtered
// removals, batch operations and policy reloads.
type CachedEngine struct {
	*Engine
	cache *ristretto.Cache
	ttl   time.Duration
}

// NewCachedEngine builds an engine with a decision cache using the default
// cache sizing.
func NewCachedEngine(m Model, opts ...EngineOption) (*CachedEngine, error) {
	return NewCachedEngineWithConfig(m, DefaultCacheConfig(), opts...)
}

// NewCachedEngineWithConfig builds an engine with an explicitly sized cache.
func NewCachedEngineWithConfig(m Model, cc CacheConfig, opts ...EngineOption) (*CachedEngine, error) {
	e, err := NewEngine(m, opts...)
	if err != nil {
		return nil, err
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cc.NumCounters,
		MaxCost:     cc.MaxCost,
		BufferItems: cc.BufferItems,
	})
	if err != nil {
		return nil, err
	}
	e.onMutation = cache.Clear
	return &CachedEngine{Engine: e, cache: cache, ttl: cc.TTL}, nil
}

func cacheKey(rvals []any) (string, bool) {
	parts := make([]string, len(rvals))
	for i, v := range rvals {
		s, ok := v.(string)
		if !ok {
			return "", false
		}
		parts[i] = s
	}
	return strings.Join(parts, cacheKeySep), true
}

// Enforce answers a request, consulting the cache first.
func (e *CachedEngine) Enforce(rvals ...any) (bool, error) {
	key, ok := cacheKey(rvals)
	if !ok {
		return e.Engine.Enforce(rvals...)
	}
	if v, hit := e.cache.Get(key); hit {
		if allowed, ok := v.(bool); ok {
			return allowed, nil
		}
	}
	allowed, err := e.Engine.Enforce(rvals...)
	if err != nil {
		return false, err
	}
	e.cache.SetWithTTL(key, allowed, 1, e.ttl)
	return allowed, nil
}

// InvalidateCache drops every cached decision.
func (e *CachedEngine) InvalidateCache() {
	e.cache.Clear()
}

// WaitCache blocks until pending cache writes are applied. Mostly useful to
// make cache state deterministic in tests.
func (e *CachedEngine) WaitCache() {
	e.cache.Wait()
}

// Close releases the cache resources.
func (e *CachedEngine) Close() {
	e.cache.Close()
}
