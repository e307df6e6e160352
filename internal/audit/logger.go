// Package audit records admin mutations as structured log lines.
package audit

import (
	"net"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Togather-Foundation/gallery/internal/api/middleware"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry describes one admin action against a resource.
type Entry struct {
	Action       string
	ResourceType string
	ResourceID   string
	Status       string
	Details      map[string]string
}

type Logger struct {
	logger zerolog.Logger
}

func NewLogger(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger.With().Str("component", "audit").Logger()}
}

// Record logs entry with the acting user and request id taken from r.
func (l *Logger) Record(r *http.Request, entry Entry) {
	if l == nil {
		return
	}
	status := entry.Status
	if status == "" {
		status = StatusSuccess
	}

	event := l.logger.Info()
	if status != StatusSuccess {
		event = l.logger.Warn()
	}
	event = event.
		Str("action", entry.Action).
		Str("resource_type", entry.ResourceType).
		Str("status", status)
	if entry.ResourceID != "" {
		event = event.Str("resource_id", entry.ResourceID)
	}
	if r != nil {
		if p, ok := middleware.Identity(r); ok {
			event = event.Str("actor_id", p.ID.String()).Str("actor_email", p.Email)
		}
		if id := middleware.GetRequestID(r.Context()); id != "" {
			event = event.Str("request_id", id)
		}
		event = event.Str("ip_address", remoteIP(r))
	}
	if len(entry.Details) > 0 {
		event = event.Interface("details", entry.Details)
	}
	event.Msg("admin action")
}

func remoteIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
