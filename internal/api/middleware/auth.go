package middleware

import (
	"context"
	"net/http"

	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/auth"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Principal is the authenticated caller, taken verbatim from token claims.
type Principal struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

type principalKey struct{}

// TokenValidator is satisfied by *auth.JWTManager.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// RequireAuthenticated rejects requests without a valid bearer token and
// attaches the caller to the request context.
func RequireAuthenticated(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := authenticate(w, r, tokens)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin is RequireAuthenticated plus a 403 for non-admin roles.
func RequireAdmin(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := authenticate(w, r, tokens)
			if !ok {
				return
			}
			if !auth.IsAdmin(principal.Role) {
				problem.Forbidden(w, r, "Admin access required")
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), principal)))
		})
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, tokens TokenValidator) (Principal, bool) {
	token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err != nil {
		problem.Unauthorized(w, r, "Missing or malformed authorization header")
		return Principal{}, false
	}
	claims, err := tokens.Validate(token)
	if err != nil {
		problem.Unauthorized(w, r, "Invalid or expired token")
		return Principal{}, false
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		problem.Unauthorized(w, r, "Invalid or expired token")
		return Principal{}, false
	}
	return Principal{ID: id, Email: claims.Email, Role: claims.Role}, true
}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	ctx = context.WithValue(ctx, principalKey{}, p)
	logger := zerolog.Ctx(ctx).With().Str("user_id", p.ID.String()).Logger()
	return logger.WithContext(ctx)
}

// Identity returns the caller attached by RequireAuthenticated or
// RequireAdmin.
func Identity(r *http.Request) (Principal, bool) {
	if r == nil {
		return Principal{}, false
	}
	return IdentityFromContext(r.Context())
}

func IdentityFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
