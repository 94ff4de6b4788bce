package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrymomot/cvbuilder/core/response"
	"github.com/dmitrymomot/cvbuilder/pkg/clientip"
	"github.com/dmitrymomot/cvbuilder/pkg/ratelimiter"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(r *http.Request) bool
	// Limiter is the rate limiting implementation to use
	Limiter ratelimiter.RateLimiter
	// KeyExtractor defines how to extract the rate limiting key (default: client IP)
	KeyExtractor func(r *http.Request) string
	// Logger records fail-open events (default: discard)
	Logger *slog.Logger
	// SetHeaders determines whether to include rate limit information in response headers
	SetHeaders bool
}

// RateLimit creates a rate limiting middleware with the provided
// configuration. Panics if no limiter is provided.
//
// CORS preflight (OPTIONS) requests always bypass the limiter. A store
// failure fails open: the request proceeds as allowed and the failure
// is logged, so an outage of the shared store never takes down the
// whole service.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	if cfg.Limiter == nil {
		panic("ratelimit middleware: limiter is required")
	}

	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = clientip.GetIP
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			key := cfg.KeyExtractor(r)
			result, err := cfg.Limiter.Allow(r.Context(), key)
			if err != nil {
				// Fail open: infrastructure trouble must not reject traffic.
				cfg.Logger.WarnContext(r.Context(), "rate limiter store failure, allowing request",
					slog.String("key", key), slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				if cfg.SetHeaders {
					setRateLimitHeaders(w, result)
				}
				response.RenderError(w, response.ErrTooManyRequests.
					WithDetail(blockMessage(result.RetryAfter())))
				return
			}

			if cfg.SetHeaders {
				setRateLimitHeaders(w, result)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// blockMessage builds the client-facing lockout message from the block
// duration.
func blockMessage(retryAfter time.Duration) string {
	minutes := int(retryAfter.Round(time.Minute).Minutes())
	if minutes < 1 {
		return fmt.Sprintf("Rate limit exceeded. IP blocked for %d seconds.", int(retryAfter.Seconds()))
	}
	return fmt.Sprintf("Rate limit exceeded. IP blocked for %d minutes.", minutes)
}

func setRateLimitHeaders(w http.ResponseWriter, result *ratelimiter.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	if !result.Allowed && result.RetryAfter() > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter().Seconds())))
	}
}
