package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/domain"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/domain/artworks"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/domain/ids"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/pages"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/domain/users"
	"github.com/google/uuid"
)

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads the request body into dst and answers 400 (or 413) on
// failure. It reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		problem.Write(w, r, http.StatusRequestEntityTooLarge, "Request body too large", err)
	case errors.Is(err, io.EOF):
		problem.BadRequest(w, r, "Request body is required", err)
	default:
		problem.BadRequest(w, r, "Invalid JSON body", err)
	}
	return false
}

// pathUUID parses the named path wildcard, answering 400 when it is not a
// UUID.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := ids.ParseUUID(r.PathValue(name))
	if err != nil {
		problem.BadRequest(w, r, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

var notFoundMessages = []struct {
	err     error
	message string
}{
	{artists.ErrNotFound, "Artist not found"},
	{artworks.ErrNotFound, "Artwork not found"},
	{editions.ErrNotFound, "Edition not found"},
	{events.ErrNotFound, "Event not found"},
	{posts.ErrNotFound, "Post not found"},
	{pages.ErrNotFound, "Page not found"},
	{media.ErrNotFound, "Media not found"},
	{messages.ErrNotFound, "Message not found"},
	{users.ErrNotFound, "User not found"},
}

// writeServiceError maps domain errors onto the error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs domain.ValidationErrors
	if errors.As(err, &fieldErrs) {
		message := "Validation failed"
		if len(fieldErrs) > 0 {
			message = capitalize(fieldErrs[0].Message)
		}
		problem.Write(w, r, http.StatusUnprocessableEntity, message, err, problem.WithFields(fieldErrs.Fields()))
		return
	}
	var fieldErr domain.ValidationError
	if errors.As(err, &fieldErr) {
		fields := map[string]string{}
		if fieldErr.Field != "" {
			fields[fieldErr.Field] = fieldErr.Message
		}
		problem.Write(w, r, http.StatusUnprocessableEntity, capitalize(fieldErr.Message), err, problem.WithFields(fields))
		return
	}
	if errors.Is(err, domain.ErrConflict) {
		problem.Write(w, r, http.StatusConflict, "A record with the same slug already exists", err)
		return
	}
	if errors.Is(err, users.ErrInvalidCredentials) {
		problem.Write(w, r, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}
	for _, nf := range notFoundMessages {
		if errors.Is(err, nf.err) {
			problem.Write(w, r, http.StatusNotFound, nf.message, err)
			return
		}
	}
	problem.Internal(w, r, err)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
