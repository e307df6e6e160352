package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/middleware"
	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/auth"
	"github.com/Togather-Foundation/gallery/internal/domain/users"
	"github.com/Togather-Foundation/gallery/internal/metrics"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

type AuthHandler struct {
	Users  *users.Service
	Tokens *auth.JWTManager
	Audit  *audit.Logger
}

func NewAuthHandler(usersService *users.Service, tokens *auth.JWTManager, auditLogger *audit.Logger) *AuthHandler {
	return &AuthHandler{Users: usersService, Tokens: tokens, Audit: auditLogger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

// Login exchanges an email and password for a signed access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, users.ErrInvalidCredentials) {
		metrics.LoginAttempts.WithLabelValues("invalid").Inc()
		h.Audit.Record(r, audit.Entry{
			Action:       "login",
			ResourceType: "user",
			Status:       audit.StatusFailure,
			Details:      map[string]string{"email": req.Email},
		})
		problem.Unauthorized(w, r, "Invalid credentials")
		return
	}
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		problem.Internal(w, r, err)
		return
	}

	token, expiresAt, err := h.Tokens.Generate(user.ID.String(), user.Email, user.Role)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		problem.Internal(w, r, err)
		return
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		User:      userResponse{ID: user.ID, Email: user.Email, Role: user.Role},
	})
}

// Me echoes the identity carried by the bearer token. The role is the one
// signed at login and may lag a later change until the token expires.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.Identity(r)
	if !ok {
		problem.Unauthorized(w, r, "Missing or malformed authorization header")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: principal.ID, Email: principal.Email, Role: principal.Role})
}
