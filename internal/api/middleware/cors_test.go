package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Togather-Foundation/gallery/internal/config"
	"github.com/rs/zerolog"
)

func corsRequest(t *testing.T, cfg config.CORSConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()
	handler := CORS(cfg, zerolog.Nop())(okHandler())
	req := httptest.NewRequest(method, "/api/public/artists", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if method == http.MethodOptions {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCORS_DevelopmentAllowsAnyOrigin(t *testing.T) {
	rec := corsRequest(t, config.CORSConfig{AllowAllOrigins: true}, http.MethodGet, "http://localhost:5173")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("expected origin echoed, got %q", got)
	}
}

func TestCORS_AllowListMatchesCaseInsensitively(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://Gallery.example/"}}
	rec := corsRequest(t, cfg, http.MethodGet, "https://gallery.example")

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://gallery.example" {
		t.Errorf("expected allowed origin, got %q", got)
	}
}

func TestCORS_RejectedOriginGetsNoHeaders(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://gallery.example"}}
	rec := corsRequest(t, cfg, http.MethodGet, "https://evil.example")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected request to proceed, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header, got %q", got)
	}
}

func TestCORS_NoOriginHeader(t *testing.T) {
	rec := corsRequest(t, config.CORSConfig{AllowAllOrigins: true}, http.MethodGet, "")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for same-origin request, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	rec := corsRequest(t, config.CORSConfig{AllowAllOrigins: true}, http.MethodOptions, "http://localhost:5173")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("expected allowed headers on preflight")
	}
}
