// Package response provides JSON response rendering and the structured
// error type used across all HTTP handlers. Errors render as
// {"detail": "..."} with the appropriate status code.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents a structured error response that implements the error
// interface. The Detail field is the human-readable message clients see.
type Error struct {
	Status int    `json:"-"`      // HTTP status code (not in JSON)
	Detail string `json:"detail"` // Human-readable message
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Detail
}

// WithDetail returns a copy of the error with a custom detail message.
func (e Error) WithDetail(detail string) Error {
	e.Detail = detail
	return e
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest          = Error{Status: http.StatusBadRequest, Detail: http.StatusText(http.StatusBadRequest)}
	ErrUnauthorized        = Error{Status: http.StatusUnauthorized, Detail: http.StatusText(http.StatusUnauthorized)}
	ErrForbidden           = Error{Status: http.StatusForbidden, Detail: http.StatusText(http.StatusForbidden)}
	ErrNotFound            = Error{Status: http.StatusNotFound, Detail: http.StatusText(http.StatusNotFound)}
	ErrConflict            = Error{Status: http.StatusConflict, Detail: http.StatusText(http.StatusConflict)}
	ErrTooManyRequests     = Error{Status: http.StatusTooManyRequests, Detail: http.StatusText(http.StatusTooManyRequests)}
	ErrInternalServerError = Error{Status: http.StatusInternalServerError, Detail: http.StatusText(http.StatusInternalServerError)}
)

// JSON writes v as an application/json response with the given status.
// Encoding failures are reported as a plain 500; by that point headers
// are already sent, so this is best effort.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// RenderError writes err as a JSON error response. Structured Errors keep
// their status and detail; anything else becomes a generic 500 carrying
// the error's message.
func RenderError(w http.ResponseWriter, err error) {
	var e Error
	if errors.As(err, &e) {
		JSON(w, e.Status, e)
		return
	}
	JSON(w, http.StatusInternalServerError, ErrInternalServerError.WithDetail(err.Error()))
}
