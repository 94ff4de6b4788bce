package middleware

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/dmitrymomot/cvbuilder/core/response"
)

// Recover converts handler panics into 500 JSON responses so one bad
// request cannot take the process down. The panic value and stack are
// logged, the client gets a generic message.
func Recover(log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())))
					response.RenderError(w, response.ErrInternalServerError.
						WithDetail(fmt.Sprintf("Internal error: %v", rec)))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
