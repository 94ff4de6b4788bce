// Package redis provides Redis client initialization and health
// checking for the shared key-value store backing rate limit counters,
// the response cache, and conversational context.
//
// Connect validates the URL, retries with a fixed interval, and
// verifies connectivity with a ping before returning the client. Both
// redis:// and rediss:// (TLS) schemes are supported.
//
// Configuration comes from the environment via the Config struct:
//
//	cfg := redis.Config{ConnectionURL: "redis://localhost:6379/0"}
//	client, err := redis.Connect(ctx, cfg)
//
// Healthcheck returns a ping function suitable for readiness probes.
// When Connect fails at startup the application degrades instead of
// exiting: the kv layer switches to its unavailable implementation and
// every dependent feature fails open.
package redis
