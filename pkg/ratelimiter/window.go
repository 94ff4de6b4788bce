package ratelimiter

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/dmitrymomot/cvbuilder/core/kv"
)

// Compile-time check that Window implements RateLimiter.
var _ RateLimiter = (*Window)(nil)

// Config holds the fixed-window parameters.
type Config struct {
	// MaxRequests is the number of requests allowed per window.
	MaxRequests int `env:"RATE_LIMIT_MAX_REQUESTS" envDefault:"50"`
	// Window is the counting interval.
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"60s"`
	// BlockDuration is how long a key stays locked out after
	// exhausting its window allowance.
	BlockDuration time.Duration `env:"RATE_LIMIT_BLOCK_DURATION" envDefault:"600s"`
}

// ErrInvalidConfig indicates non-positive rate limiting parameters.
var ErrInvalidConfig = errors.New("invalid rate limiter configuration")

// Window implements RateLimiter with a fixed-window counter and a block
// flag, both held in the shared key-value store under "rate:{key}" and
// "blocked:{key}".
type Window struct {
	store kv.Store
	cfg   Config
}

// NewWindow creates a fixed-window limiter over the given store.
func NewWindow(store kv.Store, cfg Config) (*Window, error) {
	if cfg.MaxRequests <= 0 || cfg.Window <= 0 || cfg.BlockDuration <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Window{store: store, cfg: cfg}, nil
}

// Config returns the limiter parameters. The middleware uses them to
// build the lockout message.
func (w *Window) Config() Config { return w.cfg }

// Allow applies the limiter state machine for key:
//
//  1. block flag present: deny without touching any state
//  2. counter absent: create with value 1 and the window TTL, allow
//  3. counter at the limit: set the block flag, deny
//  4. otherwise: increment the counter (TTL untouched, the window keeps
//     counting down from its creation), allow
func (w *Window) Allow(ctx context.Context, key string) (*Result, error) {
	blocked, err := w.store.Exists(ctx, "blocked:"+key)
	if err != nil {
		return nil, err
	}
	if blocked {
		return w.deny(), nil
	}

	rateKey := "rate:" + key
	raw, err := w.store.Get(ctx, rateKey)
	if errors.Is(err, kv.ErrNotFound) {
		if err := w.store.Set(ctx, rateKey, "1", w.cfg.Window); err != nil {
			return nil, err
		}
		return w.allow(1), nil
	}
	if err != nil {
		return nil, err
	}

	count, err := strconv.Atoi(raw)
	if err != nil {
		// Corrupt counter: recreate the window rather than lock the
		// client out on our own bug.
		if err := w.store.Set(ctx, rateKey, "1", w.cfg.Window); err != nil {
			return nil, err
		}
		return w.allow(1), nil
	}

	if count >= w.cfg.MaxRequests {
		if err := w.store.Set(ctx, "blocked:"+key, "1", w.cfg.BlockDuration); err != nil {
			return nil, err
		}
		return w.deny(), nil
	}

	n, err := w.store.Incr(ctx, rateKey)
	if err != nil {
		return nil, err
	}
	return w.allow(int(n)), nil
}

func (w *Window) allow(count int) *Result {
	remaining := w.cfg.MaxRequests - count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   true,
		Limit:     w.cfg.MaxRequests,
		Remaining: remaining,
	}
}

func (w *Window) deny() *Result {
	// The store does not expose TTLs, so ResetAt is the upper bound: a
	// client already mid-block lifts earlier than this.
	return &Result{
		Allowed: false,
		Limit:   w.cfg.MaxRequests,
		ResetAt: time.Now().Add(w.cfg.BlockDuration),
	}
}
