// Package testauth signs tokens for tests that drive the HTTP API. It must
// not be imported outside _test.go files.
package testauth

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/auth"
)

const (
	// Secret is a fixed signing key long enough for auth.NewJWTManager.
	Secret = "gallery-test-secret-0123456789abcdef"
	Issuer = "gallery"
)

// Authenticator mints bearer tokens for a throwaway principal per call.
type Authenticator struct {
	Tokens *auth.JWTManager
}

func New() *Authenticator {
	return &Authenticator{Tokens: auth.NewJWTManager(Secret, time.Hour, Issuer)}
}

// Token signs a token for a fresh user id with the given role.
func (a *Authenticator) Token(t testing.TB, email, role string) string {
	t.Helper()
	token, _, err := a.Tokens.Generate(uuid.NewString(), email, role)
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

// Authorize sets the Authorization header on req.
func (a *Authenticator) Authorize(t testing.TB, req *http.Request, role string) *http.Request {
	t.Helper()
	req.Header.Set("Authorization", "Bearer "+a.Token(t, role+"@gallery.test", role))
	return req
}

// Admin is Authorize with the admin role.
func (a *Authenticator) Admin(t testing.TB, req *http.Request) *http.Request {
	return a.Authorize(t, req, string(auth.RoleAdmin))
}
