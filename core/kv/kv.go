package kv

import (
	"context"
	"errors"
	"time"
)

// Package-level errors. Callers distinguish a missing key from an
// unreachable store: the former is normal control flow, the latter
// triggers degraded-mode behavior.
var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("key-value store unavailable")
)

// Store is the process-wide key-value capability shared by all requests.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the string value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key with the given TTL. A zero TTL stores
	// the key without expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Incr atomically increments the integer value stored under key and
	// returns the new value. A missing key is treated as zero. The key's
	// TTL is not touched.
	Incr(ctx context.Context, key string) (int64, error)

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Keys returns all keys matching the glob-style pattern, e.g.
	// "cache:*user_42*". Intended for best-effort invalidation scans,
	// not for iteration over large keyspaces.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Unavailable is the degraded-mode Store: every operation fails with
// ErrUnavailable. It is returned instead of nil when the backing
// connection cannot be established, so callers always hold a usable
// capability object.
type Unavailable struct{}

// NewUnavailable returns the degraded-mode store.
func NewUnavailable() Unavailable { return Unavailable{} }

func (Unavailable) Get(context.Context, string) (string, error) { return "", ErrUnavailable }

func (Unavailable) Set(context.Context, string, string, time.Duration) error { return ErrUnavailable }

func (Unavailable) Incr(context.Context, string) (int64, error) { return 0, ErrUnavailable }

func (Unavailable) Exists(context.Context, string) (bool, error) { return false, ErrUnavailable }

func (Unavailable) Delete(context.Context, ...string) error { return ErrUnavailable }

func (Unavailable) Keys(context.Context, string) ([]string, error) { return nil, ErrUnavailable }
