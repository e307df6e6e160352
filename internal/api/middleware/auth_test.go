package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Togather-Foundation/gallery/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func issue(t *testing.T, manager *auth.JWTManager, id uuid.UUID, role string) string {
	t.Helper()
	token, _, err := manager.Generate(id.String(), "curator@gallery.example", role)
	require.NoError(t, err)
	return token
}

func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := Identity(r)
		if !ok {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		_ = json.NewEncoder(w).Encode(p)
	})
}

func TestRequireAuthenticated(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, time.Hour, "gallery")
	expired := auth.NewJWTManager(testSecret, -time.Minute, "gallery")
	id := uuid.New()

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"expired token", "Bearer " + issue(t, expired, id, "editor"), http.StatusUnauthorized},
		{"editor accepted", "Bearer " + issue(t, manager, id, "editor"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			RequireAuthenticated(manager)(identityEcho()).ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code)
			if tc.want != http.StatusOK {
				require.Contains(t, rec.Body.String(), `"error"`)
			}
		})
	}
}

func TestRequireAuthenticatedAttachesIdentity(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, time.Hour, "gallery")
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, manager, id, "admin"))
	rec := httptest.NewRecorder()
	RequireAuthenticated(manager)(identityEcho()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got Principal
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, Principal{ID: id, Email: "curator@gallery.example", Role: "admin"}, got)
}

func TestRequireAdmin(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, time.Hour, "gallery")

	editor := httptest.NewRequest(http.MethodGet, "/api/admin/artists", nil)
	editor.Header.Set("Authorization", "Bearer "+issue(t, manager, uuid.New(), "editor"))
	rec := httptest.NewRecorder()
	RequireAdmin(manager)(identityEcho()).ServeHTTP(rec, editor)
	require.Equal(t, http.StatusForbidden, rec.Code)

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/artists", nil)
	admin.Header.Set("Authorization", "Bearer "+issue(t, manager, uuid.New(), "admin"))
	rec = httptest.NewRecorder()
	RequireAdmin(manager)(identityEcho()).ServeHTTP(rec, admin)
	require.Equal(t, http.StatusOK, rec.Code)

	anonymous := httptest.NewRequest(http.MethodGet, "/api/admin/artists", nil)
	rec = httptest.NewRecorder()
	RequireAdmin(manager)(identityEcho()).ServeHTTP(rec, anonymous)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityWithoutAuth(t *testing.T) {
	_, ok := Identity(httptest.NewRequest(http.MethodGet, "/", nil))
	require.False(t, ok)
	_, ok = Identity(nil)
	require.False(t, ok)
}
