package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/audit"
)

// recordMutation writes the audit line for a successful admin change.
func recordMutation(l *audit.Logger, r *http.Request, action, resourceType string, id uuid.UUID) {
	l.Record(r, audit.Entry{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   id.String(),
		Status:       audit.StatusSuccess,
	})
}

func searchQuery(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("q"))
}

func derefIDs(ids *[]uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	return *ids
}
