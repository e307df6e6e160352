package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/Togather-Foundation/gallery/internal/api/middleware"
	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/pages"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/domain/users"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
	"github.com/Togather-Foundation/gallery/internal/testauth"
)

type publishedArtists struct {
	artists.Repository
}

func (publishedArtists) ListPublished(context.Context, pagination.Page) ([]artists.WithPortrait, error) {
	return []artists.WithPortrait{{Artist: artists.Artist{ID: uuid.New(), Name: "Jane Doe", Slug: "jane-doe", Published: true}}}, nil
}

func (publishedArtists) List(context.Context, artists.Filters, pagination.Page) ([]artists.WithPortrait, error) {
	return nil, nil
}

// fakeRepository hands out nil-backed repositories except for artists.
type fakeRepository struct{}

func (fakeRepository) Users() users.Repository       { return nil }
func (fakeRepository) Media() media.Repository       { return nil }
func (fakeRepository) Artists() artists.Repository   { return publishedArtists{} }
func (fakeRepository) Artworks() artworks.Repository { return nil }
func (fakeRepository) Editions() editions.Repository { return nil }
func (fakeRepository) Events() events.Repository     { return nil }
func (fakeRepository) Posts() posts.Repository       { return nil }
func (fakeRepository) Pages() pages.Repository       { return nil }
func (fakeRepository) Messages() messages.Repository { return nil }
func (fakeRepository) Waitlist() waitlist.Repository { return nil }
func (fakeRepository) Ping(context.Context) error    { return nil }

func newTestRouter(t *testing.T) (http.Handler, *testauth.Authenticator) {
	t.Helper()
	authn := testauth.New()
	limiter := middleware.NewRateLimiter(config.RateLimitConfig{})
	t.Cleanup(limiter.Stop)

	router := NewRouter(Dependencies{
		Config: config.Config{
			Environment: "test",
			CORS:        config.CORSConfig{AllowedOrigins: []string{"https://gallery.example"}},
		},
		Logger:  zerolog.Nop(),
		Repo:    fakeRepository{},
		Tokens:  authn.Tokens,
		Limiter: limiter,
		Build:   BuildInfo{Version: "1.2.3"},
	})
	return router, authn
}

func TestRouterPublicRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/public/artists", nil)
	req.Header.Set("Origin", "https://gallery.example")
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)

	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, res.Header().Get("X-Request-ID"))
	require.Equal(t, "https://gallery.example", res.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))

	var body []map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Len(t, body, 1)
	require.Equal(t, "jane-doe", body[0]["slug"])
}

func TestRouterAdminRequiresAdminToken(t *testing.T) {
	router, authn := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/admin/artists", nil))
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, authn.Authorize(t, httptest.NewRequest(http.MethodGet, "/api/admin/artists", nil), "editor"))
	require.Equal(t, http.StatusForbidden, res.Code)
	require.JSONEq(t, `{"error":"Admin access required"}`, res.Body.String())

	res = httptest.NewRecorder()
	router.ServeHTTP(res, authn.Admin(t, httptest.NewRequest(http.MethodGet, "/api/admin/artists", nil)))
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, "[]", res.Body.String())
}

func TestRouterMethodAndFallbacks(t *testing.T) {
	router, _ := newTestRouter(t)

	res := httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodDelete, "/api/public/artists", nil))
	require.Equal(t, http.StatusMethodNotAllowed, res.Code)
	require.Equal(t, "GET", res.Header().Get("Allow"))

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/nothing-here", nil))
	require.Equal(t, http.StatusNotFound, res.Code)
	require.JSONEq(t, `{"error":"Not found"}`, res.Body.String())

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "Disallow: /api/admin/")

	res = httptest.NewRecorder()
	router.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, res.Code)
	require.True(t, strings.Contains(res.Body.String(), "gallery_http_requests_total"))
}
