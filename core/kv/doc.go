// Package kv defines the shared key-value store capability used by the
// rate limiter, response cache, and dialog store.
//
// The Store interface covers exactly the operations those components need:
// get, set-with-expiry, increment, exists, delete, and pattern scan. Three
// implementations are provided:
//
//   - Redis: production backend over go-redis, shared process-wide
//   - Memory: in-process TTL map, used by tests and local development
//   - Unavailable: degraded-mode stand-in returned when the Redis connection
//     cannot be established at startup
//
// Unavailable is the explicit "store is down" state: every call returns
// ErrUnavailable, and callers translate that into their documented fallback
// (rate limiter fails open, cache treats reads as misses and drops writes,
// dialog store reads as empty). The process never crashes because the store
// is unreachable.
//
// Usage:
//
//	store, err := kv.NewRedis(client)
//	if err != nil {
//		store = kv.NewUnavailable()
//	}
//	cache := cache.New(store)
package kv
