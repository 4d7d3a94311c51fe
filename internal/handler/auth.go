package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/video-share/internal/apperror"
	"github.com/sakif/video-share/internal/auth"
	"github.com/sakif/video-share/internal/model"
	"github.com/sakif/video-share/internal/service"
)

// Authenticator is the part of service.AuthService the handlers call.
// Tests substitute a fake.
type Authenticator interface {
	Register(ctx context.Context, email, password string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

var _ Authenticator = (*service.AuthService)(nil)

// AuthHandler manages registration, login and the current-user lookup.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account and return a token
//   - HandleLogin    → exchange credentials for a token
//   - HandleMe       → return the currently authenticated user's profile
type AuthHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(a Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: a, logger: logger}
}

// CredentialsRequest is the body of both register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries a freshly issued bearer token.
type TokenResponse struct {
	Token string `json:"token"`
}

// HandleRegister creates an account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"email": "a@b.co", "password": "Passw0rd!"}
// RESPONSE: 201 {"token": "<jwt>"}
//
// 400 on validation failure (the body names the field), 409 when the email
// is already registered.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, TokenResponse{Token: result.Token})
}

// HandleLogin exchanges credentials for a token.
//
// HTTP: POST /api/auth/login
// RESPONSE: 200 {"token": "<jwt>"}
//
// An unknown email and a wrong password both get the same 401.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{Token: result.Token})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: Required (RequireAuth middleware puts the Identity in the context)
//
// A valid token for an account that no longer exists is treated as 401.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperror.Unauthorized())
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			err = apperror.Unauthorized()
		}
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
