package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Service-level errors mapped to HTTP statuses by the handler.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// Result is what a successful authentication returns: the token pair
// plus the public user profile.
type Result struct {
	TokenPair
	User Profile `json:"user"`
}

// Profile is the public view of an account.
type Profile struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Service implements signup, login, Google sign-in, and token refresh.
type Service struct {
	repo   Repository
	tokens *TokenService
	log    *slog.Logger
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the auth service.
func NewService(repo Repository, tokens *TokenService, opts ...ServiceOption) *Service {
	s := &Service{
		repo:   repo,
		tokens: tokens,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup registers a new account and issues a token pair.
func (s *Service) Signup(ctx context.Context, email, password, fullName string) (Result, error) {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return Result{}, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return Result{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     defaultFullName(fullName, email),
	})
	if err != nil {
		return Result{}, fmt.Errorf("create user: %w", err)
	}

	s.log.InfoContext(ctx, "user signed up", slog.Int64("user_id", user.ID))
	return s.authResult(user)
}

// Login authenticates by email and password. Unknown accounts and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Result{}, ErrInvalidCredentials
	}
	if err != nil {
		return Result{}, fmt.Errorf("lookup user: %w", err)
	}

	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Result{}, ErrInvalidCredentials
	}

	return s.authResult(user)
}

// GoogleAuth signs in (or up) with a Google identity. An existing
// account matched by email gets the Google id linked; otherwise a new
// passwordless account is created.
func (s *Service) GoogleAuth(ctx context.Context, googleID, email, fullName string) (Result, error) {
	user, err := s.repo.GetByEmailOrGoogleID(ctx, email, googleID)
	switch {
	case errors.Is(err, ErrUserNotFound):
		user, err = s.repo.Create(ctx, User{
			Email:    email,
			GoogleID: googleID,
			FullName: defaultFullName(fullName, email),
		})
		if err != nil {
			return Result{}, fmt.Errorf("create user: %w", err)
		}
	case err != nil:
		return Result{}, fmt.Errorf("lookup user: %w", err)
	default:
		if user.GoogleID == "" {
			if err := s.repo.SetGoogleID(ctx, user.ID, googleID); err != nil {
				return Result{}, fmt.Errorf("link google id: %w", err)
			}
			user.GoogleID = googleID
		}
	}

	return s.authResult(user)
}

// Refresh validates a refresh token and issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidRefresh
	}

	userID, err := claims.UserID()
	if err != nil {
		return "", ErrInvalidRefresh
	}

	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return "", ErrInvalidRefresh
	}
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	return s.tokens.GenerateAccess(user.ID, user.Email)
}

func (s *Service) authResult(user User) (Result, error) {
	pair, err := s.tokens.GeneratePair(user.ID, user.Email)
	if err != nil {
		return Result{}, fmt.Errorf("generate tokens: %w", err)
	}
	return Result{
		TokenPair: pair,
		User: Profile{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
	}, nil
}

// defaultFullName falls back to the email local part when no name is given.
func defaultFullName(fullName, email string) string {
	if fullName != "" {
		return fullName
	}
	local, _, _ := strings.Cut(email, "@")
	return local
}
