package cache_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cvbuilder/core/cache"
	"github.com/dmitrymomot/cvbuilder/core/kv"
)

func countingHandler(calls *atomic.Int64, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func TestMiddlewareHitSkipsHandler(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := cache.New(kv.NewMemory())
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		countingHandler(&calls, `{"resumes":[]}`))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/resume-op/all", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/resume-op/all", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))

	assert.Equal(t, int64(1), calls.Load(), "handler must run exactly once")
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))
}

func TestMiddlewareKeyCoversMethodPathQuery(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := cache.New(kv.NewMemory())
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		countingHandler(&calls, `{}`))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a?page=2", nil))

	assert.Equal(t, int64(3), calls.Load(), "distinct requests must not share entries")
}

func TestMiddlewareSkipsNonGET(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := cache.New(kv.NewMemory())
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		countingHandler(&calls, `{}`))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/x", nil))

	assert.Equal(t, int64(2), calls.Load(), "POST requests are never cached")
}

func TestMiddlewareDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := cache.New(kv.NewMemory())
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, int64(2), calls.Load(), "error responses must not be cached")
}

func TestMiddlewareTTLExpiry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	now := time.Now()
	store := kv.NewMemory(kv.WithClock(func() time.Time { return now }))
	c := cache.New(store)
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		countingHandler(&calls, `{}`))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	require.Equal(t, int64(1), calls.Load())

	now = now.Add(2 * time.Minute)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, int64(2), calls.Load(), "expired entry must recompute")
}

func TestPurgePatternScopesInvalidation(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	store := kv.NewMemory()
	c := cache.New(store)

	scope := func(r *http.Request) string {
		return "user_" + r.Header.Get("X-User")
	}
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute, Scope: scope})(
		countingHandler(&calls, `{}`))

	get := func(user string) {
		req := httptest.NewRequest(http.MethodGet, "/resume-op/all", nil)
		req.Header.Set("X-User", user)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	get("1")
	get("2")
	require.Equal(t, int64(2), calls.Load())

	// Warm entries replay without the handler.
	get("1")
	get("2")
	require.Equal(t, int64(2), calls.Load())

	require.NoError(t, c.PurgePattern(context.Background(), "user_1"))

	get("1")
	assert.Equal(t, int64(3), calls.Load(), "purged user must recompute")
	get("2")
	assert.Equal(t, int64(3), calls.Load(), "other user's entry must survive")
}

func TestPurgeAll(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := cache.New(kv.NewMemory())
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		countingHandler(&calls, `{}`))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil))
	require.Equal(t, int64(2), calls.Load())

	require.NoError(t, c.PurgeAll(context.Background()))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/a", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/b", nil))
	assert.Equal(t, int64(4), calls.Load())
}

func TestUnavailableStoreDegradesToMissOnly(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	c := cache.New(kv.NewUnavailable())
	h := c.Middleware(cache.MiddlewareConfig{TTL: time.Minute})(
		countingHandler(&calls, `{}`))

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/a", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, int64(3), calls.Load(), "every request recomputes when the store is down")
}

func TestKeyIsDeterministic(t *testing.T) {
	t.Parallel()

	k1 := cache.Key(http.MethodGet, "/resume-op/all", "page=1", "user_7")
	k2 := cache.Key(http.MethodGet, "/resume-op/all", "page=1", "user_7")
	k3 := cache.Key(http.MethodGet, "/resume-op/all", "page=2", "user_7")

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.Contains(t, k1, "user_7")
	assert.Contains(t, k1, "cache:")
}
