package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
)

// SessionService is the full session provider surface the auth endpoints use.
type SessionService interface {
	SignUp(ctx context.Context, email, password string) (*domain.User, string, error)
	SignIn(ctx context.Context, email, password string) (*domain.User, string, error)
	SignOut(ctx context.Context, token string) error
	Current(ctx context.Context, token string) (*domain.User, error)
}

type AuthHandler struct {
	sessions SessionService
	timeout  time.Duration
}

func NewAuthHandler(sessions SessionService, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		timeout:  timeout,
	}
}

type CredentialsDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, token, err := h.sessions.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, SessionResponse{User: user, Token: token})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	user, token, err := h.sessions.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SessionResponse{User: user, Token: token})
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.sessions.SignOut(ctx, bearerToken(r)); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (CredentialsDTO, bool) {
	var req CredentialsDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return req, false
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "invalid_email", "valid email required")
		return req, false
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "invalid_password", "password required")
		return req, false
	}
	return req, true
}
