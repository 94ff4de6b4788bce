package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/cvbuilder/core/logger"
	"github.com/dmitrymomot/cvbuilder/core/response"
)

// Handler serves the authentication endpoints.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler creates the auth HTTP handler.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, log: log}
}

// Routes mounts the auth endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/google", h.google)
	r.Post("/refresh", h.refresh)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		response.RenderError(w, response.ErrBadRequest.WithDetail("email and password are required"))
		return
	}

	result, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.FullName)
	if errors.Is(err, ErrUserExists) {
		response.RenderError(w, response.ErrBadRequest.WithDetail("User already exists"))
		return
	}
	if err != nil {
		h.internalError(w, r, "signup failed", err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		response.RenderError(w, response.ErrBadRequest.WithDetail("email and password are required"))
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, ErrInvalidCredentials) {
		response.RenderError(w, response.ErrUnauthorized.WithDetail("Invalid credentials"))
		return
	}
	if err != nil {
		h.internalError(w, r, "login failed", err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

type googleAuthRequest struct {
	GoogleID string `json:"google_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (h *Handler) google(w http.ResponseWriter, r *http.Request) {
	var req googleAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GoogleID == "" || req.Email == "" {
		response.RenderError(w, response.ErrBadRequest.WithDetail("google_id and email are required"))
		return
	}

	result, err := h.svc.GoogleAuth(r.Context(), req.GoogleID, req.Email, req.FullName)
	if err != nil {
		h.internalError(w, r, "google auth failed", err)
		return
	}

	response.JSON(w, http.StatusOK, result)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.RenderError(w, response.ErrBadRequest.WithDetail("refresh_token is required"))
		return
	}

	access, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if errors.Is(err, ErrInvalidRefresh) {
		response.RenderError(w, response.ErrUnauthorized.WithDetail("Invalid refresh token"))
		return
	}
	if err != nil {
		h.internalError(w, r, "token refresh failed", err)
		return
	}

	response.JSON(w, http.StatusOK, refreshResponse{AccessToken: access, TokenType: "bearer"})
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.log.ErrorContext(r.Context(), msg, logger.Error(err))
	response.RenderError(w, response.ErrInternalServerError)
}
