package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/config"
	"golang.org/x/time/rate"
)

type RateLimitTier string

const (
	TierPublic RateLimitTier = "public"
	TierAdmin  RateLimitTier = "admin"
	TierLogin  RateLimitTier = "login"
)

const (
	limiterTTL      = 15 * time.Minute
	cleanupInterval = 5 * time.Minute
	loginWindow     = 15 * time.Minute
)

// RateLimiter keeps one token bucket per tier and client address.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	tiers    map[RateLimitTier]tierLimit
	trusted  []*net.IPNet
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type tierLimit struct {
	every time.Duration
	burst int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds the tiers from cfg. A tier configured with zero or
// less is unlimited. Call Stop to end the background sweep.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		tiers:    make(map[RateLimitTier]tierLimit),
		trusted:  parseCIDRs(cfg.TrustedProxyCIDRs),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	if n := cfg.PublicPerMinute; n > 0 {
		rl.tiers[TierPublic] = tierLimit{every: time.Minute / time.Duration(n), burst: n}
	}
	if n := cfg.AdminPerMinute; n > 0 {
		rl.tiers[TierAdmin] = tierLimit{every: time.Minute / time.Duration(n), burst: n}
	}
	// login: a burst of n, refilled evenly across the 15 minute window
	if n := cfg.LoginPer15Minutes; n > 0 {
		rl.tiers[TierLogin] = tierLimit{every: loginWindow / time.Duration(n), burst: n}
	}
	go rl.sweep()
	return rl
}

// Limit applies the tier to every request reaching next.
func (rl *RateLimiter) Limit(tier RateLimitTier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limit, enabled := rl.tiers[tier]
		if !enabled {
			return next
		}
		retryAfter := strconv.Itoa(int(max(limit.every, time.Second).Seconds()))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.limiter(tier, rl.clientKey(r)).Allow() {
				w.Header().Set("Retry-After", retryAfter)
				problem.Write(w, r, http.StatusTooManyRequests, "Too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) limiter(tier RateLimitTier, client string) *rate.Limiter {
	key := string(tier) + ":" + client
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, ok := rl.limiters[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}
	limit := rl.tiers[tier]
	entry := &limiterEntry{limiter: rate.NewLimiter(rate.Every(limit.every), limit.burst), lastSeen: now}
	rl.limiters[key] = entry
	return entry.limiter
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	cutoff := rl.now().Add(-limiterTTL)
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

// clientKey is the remote address, or the forwarded client address when the
// connection comes from a trusted proxy.
func (rl *RateLimiter) clientKey(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if !rl.isTrusted(remote) {
		return remote
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if client := strings.TrimSpace(first); client != "" {
			return client
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return remote
}

func (rl *RateLimiter) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, cidr := range rl.trusted {
		if cidr.Contains(parsed) {
			return true
		}
	}
	return false
}

func parseCIDRs(values []string) []*net.IPNet {
	var out []*net.IPNet
	for _, value := range values {
		if _, cidr, err := net.ParseCIDR(strings.TrimSpace(value)); err == nil {
			out = append(out, cidr)
		}
	}
	return out
}
