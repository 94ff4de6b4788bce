// Package jwt provides an RFC 7519 compliant JSON Web Token implementation
// using HMAC-SHA256.
//
// It covers generation, validation, and parsing of JWTs with standard
// claims and custom payload structures. Signature verification uses
// constant-time comparison, and temporal claims (exp, nbf) are validated
// during Parse.
package jwt

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

// header is the fixed JOSE header for all tokens this service issues.
var encodedHeader = base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))

// Service generates and parses HMAC-SHA256 signed tokens.
type Service struct {
	signingKey []byte
}

// New creates a Service with the given signing key.
func New(signingKey []byte) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrEmptySigningKey
	}
	return &Service{signingKey: signingKey}, nil
}

// NewFromString creates a Service from a string signing key.
func NewFromString(signingKey string) (*Service, error) {
	return New([]byte(signingKey))
}

// Generate creates a signed token carrying the given claims. Claims may
// be StandardClaims or any JSON-serializable struct embedding it.
func (s *Service) Generate(claims any) (string, error) {
	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	signingInput := encodedHeader + "." + base64.RawURLEncoding.EncodeToString(payload)
	return signingInput + "." + s.sign(signingInput), nil
}

// Parse validates the token signature and temporal claims, then
// unmarshals the payload into claims (a pointer).
func (s *Service) Parse(token string, claims any) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}

	signingInput := parts[0] + "." + parts[1]
	expected := s.sign(signingInput)
	if !hmac.Equal([]byte(expected), []byte(parts[2])) {
		return ErrInvalidSignature
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return ErrInvalidToken
	}
	var hdr struct {
		Alg string `json:"alg"`
	}
	if err := json.Unmarshal(headerJSON, &hdr); err != nil || hdr.Alg != "HS256" {
		return ErrInvalidToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return ErrInvalidToken
	}

	// Temporal validation happens against the raw payload so it applies
	// to custom claims types that embed StandardClaims as well.
	var temporal struct {
		ExpiresAt int64 `json:"exp"`
		NotBefore int64 `json:"nbf"`
	}
	if err := json.Unmarshal(payload, &temporal); err != nil {
		return ErrInvalidToken
	}

	now := time.Now().Unix()
	if temporal.ExpiresAt != 0 && now >= temporal.ExpiresAt {
		return ErrExpiredToken
	}
	if temporal.NotBefore != 0 && now < temporal.NotBefore {
		return ErrTokenNotYetValid
	}

	if err := json.Unmarshal(payload, claims); err != nil {
		return ErrInvalidToken
	}
	return nil
}

func (s *Service) sign(signingInput string) string {
	mac := hmac.New(sha256.New, s.signingKey)
	mac.Write([]byte(signingInput))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
