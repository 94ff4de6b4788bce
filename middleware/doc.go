// Package middleware provides the HTTP middleware chain: request IDs,
// structured request logging, CORS, and rate limiting. Each middleware
// follows the same shape: a Config struct with optional Skip function
// and sensible defaults, returning a func(http.Handler) http.Handler.
//
// JWT authorization lives in the auth package, next to the token
// service that issues the claims it validates.
package middleware
