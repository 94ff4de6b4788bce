package auth

import (
	"strconv"
	"time"

	"github.com/dmitrymomot/cvbuilder/pkg/jwt"
)

// Token type claim values.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Token lifetimes.
const (
	AccessTokenTTL  = 6 * time.Hour
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the payload carried by both access and refresh tokens.
// Subject holds the user id, TokenType separates the two kinds so a
// refresh token can never pass as an access token.
type Claims struct {
	jwt.StandardClaims
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

// TokenPair bundles the two tokens issued on successful authentication.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenService issues and validates the application's JWTs.
type TokenService struct {
	jwt *jwt.Service
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string) (*TokenService, error) {
	svc, err := jwt.NewFromString(secret)
	if err != nil {
		return nil, err
	}
	return &TokenService{jwt: svc}, nil
}

// GeneratePair issues a fresh access+refresh token pair for the user.
func (s *TokenService) GeneratePair(userID int64, email string) (TokenPair, error) {
	access, err := s.generate(userID, email, TokenTypeAccess, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.generate(userID, email, TokenTypeRefresh, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateAccess issues a standalone access token, used when rotating
// via a refresh token.
func (s *TokenService) GenerateAccess(userID int64, email string) (string, error) {
	return s.generate(userID, email, TokenTypeAccess, AccessTokenTTL)
}

func (s *TokenService) generate(userID int64, email, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	return s.jwt.Generate(Claims{
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		Email:     email,
		TokenType: tokenType,
	})
}

// ParseAccess validates an access token and returns its claims.
// A structurally valid refresh token is rejected with ErrInvalidToken.
func (s *TokenService) ParseAccess(token string) (Claims, error) {
	return s.parse(token, TokenTypeAccess)
}

// ParseRefresh validates a refresh token and returns its claims.
func (s *TokenService) ParseRefresh(token string) (Claims, error) {
	return s.parse(token, TokenTypeRefresh)
}

func (s *TokenService) parse(token, tokenType string) (Claims, error) {
	var claims Claims
	if err := s.jwt.Parse(token, &claims); err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenType {
		return Claims{}, jwt.ErrInvalidToken
	}
	return claims, nil
}

// UserID extracts the numeric user id from the subject claim.
func (c Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}
