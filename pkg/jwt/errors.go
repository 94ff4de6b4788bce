package jwt

import "errors"

// Package-level error definitions for token operations.
var (
	ErrEmptySigningKey  = errors.New("signing key is required")
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token expired")
	ErrTokenNotYetValid = errors.New("token not yet valid")
)
