package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Body is the error envelope returned by every endpoint.
type Body struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type Option func(*Body)

// WithFields attaches per-field validation messages.
func WithFields(fields map[string]string) Option {
	return func(b *Body) {
		if len(fields) > 0 {
			b.Fields = fields
		}
	}
}

// Write logs err against the request logger and writes the envelope.
// Server errors never echo err to the client.
func Write(w http.ResponseWriter, r *http.Request, status int, message string, err error, opts ...Option) {
	if status >= 500 {
		message = "Internal server error"
	}
	body := Body{Error: message}
	for _, opt := range opts {
		opt(&body)
	}

	if r != nil {
		logger := zerolog.Ctx(r.Context())
		if status >= 500 {
			logger.Error().
				Err(err).
				Int("status", status).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("request failed")
		} else if err != nil && status >= 400 {
			logger.Warn().
				Err(err).
				Int("status", status).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(message)
		}
	}

	WriteBody(w, status, body)
}

func WriteBody(w http.ResponseWriter, status int, body Body) {
	payload, err := json.Marshal(body)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	Write(w, r, http.StatusBadRequest, message, err)
}

func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	Write(w, r, http.StatusNotFound, message, ErrNotFound)
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	Write(w, r, http.StatusUnauthorized, message, ErrUnauthorized)
}

func Forbidden(w http.ResponseWriter, r *http.Request, message string) {
	Write(w, r, http.StatusForbidden, message, ErrForbidden)
}

func Internal(w http.ResponseWriter, r *http.Request, err error) {
	Write(w, r, http.StatusInternalServerError, "", err)
}

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)
