package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrymomot/cvbuilder/core/response"
	"github.com/dmitrymomot/cvbuilder/pkg/jwt"
)

// 401 detail messages, stable parts of the API contract.
const (
	detailMissingToken = "Missing or invalid token"
	detailExpiredToken = "Token expired"
	detailInvalidToken = "Invalid token"
)

// MiddlewareConfig configures the JWT auth middleware.
type MiddlewareConfig struct {
	// Tokens validates bearer tokens (required)
	Tokens *TokenService
	// ProtectedPrefixes lists path prefixes requiring authentication.
	// Requests outside these prefixes pass through untouched.
	// Default: ["/api/resume-op"].
	ProtectedPrefixes []string
}

// Middleware guards the configured path prefixes with bearer token
// authentication. Panics if no token service is provided.
//
// CORS preflight (OPTIONS) requests always pass. On success the caller
// identity is attached to the request context; on failure the response
// is 401 with a detail naming the reason.
func Middleware(cfg MiddlewareConfig) func(http.Handler) http.Handler {
	if cfg.Tokens == nil {
		panic("auth middleware: token service is required")
	}
	if cfg.ProtectedPrefixes == nil {
		cfg.ProtectedPrefixes = []string{"/api/resume-op"}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || !isProtected(r.URL.Path, cfg.ProtectedPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				response.RenderError(w, response.ErrUnauthorized.WithDetail(detailMissingToken))
				return
			}

			claims, err := cfg.Tokens.ParseAccess(token)
			if err != nil {
				detail := detailInvalidToken
				if errors.Is(err, jwt.ErrExpiredToken) {
					detail = detailExpiredToken
				}
				response.RenderError(w, response.ErrUnauthorized.WithDetail(detail))
				return
			}

			userID, err := claims.UserID()
			if err != nil {
				response.RenderError(w, response.ErrUnauthorized.WithDetail(detailInvalidToken))
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: userID, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isProtected(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
