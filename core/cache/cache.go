// Package cache provides a read-through HTTP response cache over the
// shared key-value store, with best-effort pattern invalidation.
//
// Only GET requests are cached. On a hit the stored response is replayed
// without invoking the wrapped handler, so a cached endpoint performs no
// side effects and no second database or model call. On a miss the
// handler runs, successful responses are captured and stored with a TTL,
// and the result is returned unchanged.
//
// Store failures are never surfaced: a failed read is a miss, a failed
// write is dropped and logged. Writes scoped to one user purge that
// user's entries via a substring scan (see PurgePattern); the substring
// is embedded in the cache key as a scope tag so the scan can match it.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/cvbuilder/core/kv"
)

const keyPrefix = "cache:"

// Cache is a read-through response cache. The zero value is not usable;
// construct with New.
type Cache struct {
	store kv.Store
	log   *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger for dropped writes and scan failures.
func WithLogger(log *slog.Logger) Option {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a Cache over the given store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key builds the deterministic cache key for a request: an md5 digest
// over exactly (method, path, query), optionally prefixed with a scope
// tag so substring purges can target it. The hash is for key stability,
// not security.
func Key(method, path, query, scope string) string {
	sum := md5.Sum([]byte(method + ":" + path + ":" + query))
	digest := hex.EncodeToString(sum[:])
	if scope != "" {
		return keyPrefix + scope + ":" + digest
	}
	return keyPrefix + digest
}

// entry is the stored form of a captured response.
type entry struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// MiddlewareConfig configures the caching middleware.
type MiddlewareConfig struct {
	// TTL is how long captured responses live.
	TTL time.Duration
	// Scope derives the per-request scope tag (e.g. "user_42") embedded
	// in the key. Nil or empty result means unscoped.
	Scope func(r *http.Request) string
}

// Middleware wraps a handler with read-through caching for GET requests.
// Non-GET requests always execute the handler uncached.
func (c *Cache) Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				next.ServeHTTP(w, r)
				return
			}

			var scope string
			if cfg.Scope != nil {
				scope = cfg.Scope(r)
			}
			key := Key(r.Method, r.URL.Path, r.URL.RawQuery, scope)

			if e, ok := c.lookup(r, key); ok {
				if e.ContentType != "" {
					w.Header().Set("Content-Type", e.ContentType)
				}
				w.Header().Set("X-Cache", "HIT")
				w.WriteHeader(e.Status)
				_, _ = w.Write([]byte(e.Body))
				return
			}

			rec := newRecorder(w)
			rec.Header().Set("X-Cache", "MISS")
			next.ServeHTTP(rec, r)

			if rec.status >= 200 && rec.status < 300 {
				c.save(r, key, entry{
					Status:      rec.status,
					ContentType: rec.Header().Get("Content-Type"),
					Body:        rec.body.String(),
				}, cfg.TTL)
			}
		})
	}
}

// lookup fetches and decodes a stored entry. Any store or decode
// failure is a miss.
func (c *Cache) lookup(r *http.Request, key string) (entry, bool) {
	raw, err := c.store.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			c.log.Debug("cache read failed, treating as miss",
				slog.String("key", key), slog.Any("error", err))
		}
		return entry{}, false
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return entry{}, false
	}
	return e, true
}

// save stores a captured response; failures are dropped.
func (c *Cache) save(r *http.Request, key string, e entry, ttl time.Duration) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	if err := c.store.Set(r.Context(), key, string(raw), ttl); err != nil {
		c.log.Debug("cache write dropped",
			slog.String("key", key), slog.Any("error", err))
	}
}

// PurgePattern deletes every cached response whose key contains the
// given substring. Invalidation is best-effort and pattern-based, not
// transactional: a tag colliding with an unrelated key fragment will
// over-invalidate, which is accepted.
func (c *Cache) PurgePattern(ctx context.Context, substring string) error {
	return c.purge(ctx, keyPrefix+"*"+substring+"*")
}

// PurgeAll deletes every cached response.
func (c *Cache) PurgeAll(ctx context.Context) error {
	return c.purge(ctx, keyPrefix+"*")
}

func (c *Cache) purge(ctx context.Context, pattern string) error {
	keys, err := c.store.Keys(ctx, pattern)
	if err != nil {
		c.log.Debug("cache purge scan failed", slog.Any("error", err))
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.store.Delete(ctx, keys...)
}
