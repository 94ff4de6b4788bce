// Package ratelimiter provides per-key request rate limiting with a
// temporary lockout for abusive clients.
//
// The Window limiter counts requests in a fixed window backed by the
// shared key-value store. When a key exhausts its window allowance a
// block flag is set; while the flag lives, every request from that key
// is rejected regardless of the counter state. Both the counter and the
// flag expire on their own, so no cleanup pass is needed.
package ratelimiter

import (
	"context"
	"time"
)

// RateLimiter defines the contract for rate limiting implementations.
type RateLimiter interface {
	// Allow consumes one request slot for key and reports the decision.
	// A store failure is returned as an error; the caller decides the
	// failure policy (the HTTP middleware fails open).
	Allow(ctx context.Context, key string) (*Result, error)
}

// Result describes a single rate-limiting decision.
type Result struct {
	Allowed   bool
	Limit     int       // Maximum requests allowed in the window
	Remaining int       // Requests left in the current window (0 when denied)
	ResetAt   time.Time // When the denial lifts; zero when allowed
}

// RetryAfter returns how long the client should wait before retrying.
// Zero for allowed results.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed || r.ResetAt.IsZero() {
		return 0
	}
	d := time.Until(r.ResetAt)
	if d < 0 {
		return 0
	}
	return d
}
