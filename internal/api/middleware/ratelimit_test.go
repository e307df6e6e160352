package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Togather-Foundation/gallery/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func newLimiter(t *testing.T, cfg config.RateLimitConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(cfg)
	t.Cleanup(rl.Stop)
	return rl
}

func send(handler http.Handler, remote, forwarded string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func TestLoginRateLimit_BlocksAfterBurst(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{LoginPer15Minutes: 5})
	handler := rl.Limit(TierLogin)(okHandler())

	for i := 0; i < 5; i++ {
		if res := send(handler, "192.168.1.101:54321", ""); res.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, res.Code)
		}
	}

	res := send(handler, "192.168.1.101:54321", "")
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", res.Code)
	}
	if got := res.Header().Get("Retry-After"); got != "180" {
		t.Errorf("expected Retry-After 180, got %s", got)
	}
	if ct := res.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON error body, got %s", ct)
	}
}

func TestLoginRateLimit_PerIPIsolation(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{LoginPer15Minutes: 1})
	handler := rl.Limit(TierLogin)(okHandler())

	send(handler, "192.168.1.100:1", "")
	if res := send(handler, "192.168.1.100:2", ""); res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected same IP to be limited, got %d", res.Code)
	}
	if res := send(handler, "192.168.1.200:1", ""); res.Code != http.StatusOK {
		t.Fatalf("different IP should not be rate limited, got status %d", res.Code)
	}
}

func TestRateLimit_ForwardedForOnlyFromTrustedProxy(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{
		LoginPer15Minutes: 1,
		TrustedProxyCIDRs: []string{"10.0.0.0/8"},
	})
	handler := rl.Limit(TierLogin)(okHandler())

	send(handler, "10.0.0.1:1", "203.0.113.45")
	if res := send(handler, "10.0.0.2:1", "203.0.113.45"); res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected forwarded client to be limited across proxies, got %d", res.Code)
	}
	if res := send(handler, "10.0.0.1:1", "203.0.113.99"); res.Code != http.StatusOK {
		t.Fatalf("expected a different forwarded client to pass, got %d", res.Code)
	}
}

func TestRateLimit_DisabledTierPassesThrough(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{AdminPerMinute: 0})
	handler := rl.Limit(TierAdmin)(okHandler())

	for i := 0; i < 20; i++ {
		if res := send(handler, "192.168.1.100:1", ""); res.Code != http.StatusOK {
			t.Fatalf("request %d: disabled tier should allow all, got status %d", i+1, res.Code)
		}
	}
}

func TestTierPublic_RateLimit(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{PublicPerMinute: 2})
	handler := rl.Limit(TierPublic)(okHandler())

	send(handler, "192.168.1.102:1", "")
	send(handler, "192.168.1.102:1", "")
	res := send(handler, "192.168.1.102:1", "")
	if res.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", res.Code)
	}
	if got := res.Header().Get("Retry-After"); got != "30" {
		t.Errorf("expected Retry-After 30 for 2/min, got %s", got)
	}
}

func TestClientKey(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{TrustedProxyCIDRs: []string{"10.0.0.0/8", "not-a-cidr"}})

	cases := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"untrusted ignores headers", "192.168.1.100:12345", map[string]string{"X-Forwarded-For": "1.2.3.4"}, "192.168.1.100"},
		{"trusted uses first forwarded", "10.0.0.1:12345", map[string]string{"X-Forwarded-For": "203.0.113.45, 198.51.100.1"}, "203.0.113.45"},
		{"trusted falls back to real ip", "10.0.0.1:12345", map[string]string{"X-Real-IP": "203.0.113.46"}, "203.0.113.46"},
		{"trusted without headers", "10.0.0.1:12345", nil, "10.0.0.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := rl.clientKey(req); got != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestEvictIdle(t *testing.T) {
	rl := newLimiter(t, config.RateLimitConfig{PublicPerMinute: 10})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.limiter(TierPublic, "a")
	now = now.Add(limiterTTL + time.Minute)
	rl.limiter(TierPublic, "b")
	rl.evictIdle()

	if _, ok := rl.limiters["public:a"]; ok {
		t.Error("expected idle limiter to be evicted")
	}
	if _, ok := rl.limiters["public:b"]; !ok {
		t.Error("expected recent limiter to be kept")
	}
}
