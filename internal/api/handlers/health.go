package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Togather-Foundation/gallery/internal/metrics"
)

const checkTimeout = 2 * time.Second

// HealthCheck is the body of GET /health.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// DatabaseProbe is the slice of the repository the health checks need.
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	MigrationState(ctx context.Context) (int64, bool, error)
	PoolStats() map[string]any
}

type HealthChecker struct {
	db        DatabaseProbe
	version   string
	gitCommit string
	now       func() time.Time
}

func NewHealthChecker(db DatabaseProbe, version, gitCommit string) *HealthChecker {
	return &HealthChecker{db: db, version: version, gitCommit: gitCommit, now: time.Now}
}

// Health runs the database and migration checks. Any failing check makes
// the response 503.
func (h *HealthChecker) Health(w http.ResponseWriter, r *http.Request) {
	select {
	case <-r.Context().Done():
		respondHealth(w, http.StatusServiceUnavailable, "shutting_down")
		return
	default:
	}

	checks := map[string]CheckResult{
		"database":   h.checkDatabase(r.Context()),
		"migrations": h.checkMigrations(r.Context()),
	}

	overall := "healthy"
	statusCode := http.StatusOK
	for name, check := range checks {
		metrics.HealthCheckStatus.WithLabelValues(name).Set(checkLevel(check.Status))
		metrics.HealthCheckLatency.WithLabelValues(name).Set(float64(check.LatencyMs))
		switch {
		case check.Status == "fail":
			overall = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		case check.Status == "warn" && overall == "healthy":
			overall = "degraded"
		}
	}
	metrics.HealthStatus.Set(map[string]float64{"unhealthy": 0, "degraded": 1, "healthy": 2}[overall])

	writeJSON(w, statusCode, HealthCheck{
		Status:    overall,
		Version:   h.version,
		GitCommit: h.gitCommit,
		Checks:    checks,
		Timestamp: h.now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "Database ping failed"
		if errors.Is(err, context.DeadlineExceeded) {
			message = "Database ping timed out"
		}
		return CheckResult{Status: "fail", Message: message, LatencyMs: latency}
	}
	return CheckResult{
		Status:    "pass",
		Message:   "PostgreSQL connection successful",
		LatencyMs: latency,
		Details:   h.db.PoolStats(),
	}
}

func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "Database not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	start := time.Now()
	version, dirty, err := h.db.MigrationState(ctx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return CheckResult{Status: "fail", Message: "Failed to read migration version", LatencyMs: latency}
	}
	if dirty {
		return CheckResult{
			Status:    "fail",
			Message:   "Database in dirty migration state",
			LatencyMs: latency,
			Details:   map[string]any{"version": version, "dirty": true},
		}
	}
	return CheckResult{
		Status:    "pass",
		Message:   fmt.Sprintf("Migrations applied (version %d)", version),
		LatencyMs: latency,
		Details:   map[string]any{"version": version, "dirty": false},
	}
}

// Healthz is the liveness probe. It never touches the database.
func (h *HealthChecker) Healthz(w http.ResponseWriter, r *http.Request) {
	respondHealth(w, http.StatusOK, "ok")
}

// Readyz answers 503 until the database responds to a ping.
func (h *HealthChecker) Readyz(w http.ResponseWriter, r *http.Request) {
	if check := h.checkDatabase(r.Context()); check.Status != "pass" {
		respondHealth(w, http.StatusServiceUnavailable, "unavailable")
		return
	}
	respondHealth(w, http.StatusOK, "ready")
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}

func checkLevel(status string) float64 {
	switch status {
	case "pass":
		return 2
	case "warn":
		return 1
	}
	return 0
}
