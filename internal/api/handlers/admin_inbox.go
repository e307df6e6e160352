package handlers

import (
	"encoding/csv"
	"net/http"
	"strings"
	"time"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/messages"
	"github.com/Togather-Foundation/gallery/internal/domain/waitlist"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

// AdminInboxHandler covers what visitors send in: contact messages and
// waitlist signups.
type AdminInboxHandler struct {
	Messages *messages.Service
	Waitlist *waitlist.Service
	Audit    *audit.Logger
}

func NewAdminInboxHandler(messagesService *messages.Service, waitlistService *waitlist.Service, auditLogger *audit.Logger) *AdminInboxHandler {
	return &AdminInboxHandler{Messages: messagesService, Waitlist: waitlistService, Audit: auditLogger}
}

func (h *AdminInboxHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Messages.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

type messageStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new read archived spam"`
}

func (h *AdminInboxHandler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req messageStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	updated, err := h.Messages.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Audit.Record(r, audit.Entry{
		Action:       "update_status",
		ResourceType: "message",
		ResourceID:   id.String(),
		Status:       audit.StatusSuccess,
		Details:      map[string]string{"status": req.Status},
	})
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminInboxHandler) ListWaitlist(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Waitlist.List(r.Context(), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// ExportWaitlist streams every signup as CSV, oldest first.
func (h *AdminInboxHandler) ExportWaitlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Waitlist.All(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="waitlist.csv"`)
	w.WriteHeader(http.StatusOK)

	out := csv.NewWriter(w)
	_ = out.Write([]string{"email", "source", "created_at"})
	for _, entry := range entries {
		source := ""
		if entry.Source != nil {
			source = *entry.Source
		}
		_ = out.Write([]string{csvCell(entry.Email), csvCell(source), entry.CreatedAt.UTC().Format(time.RFC3339)})
	}
	out.Flush()
	if err := out.Error(); err != nil {
		h.Audit.Record(r, audit.Entry{Action: "export", ResourceType: "waitlist", Status: audit.StatusFailure})
		return
	}
	h.Audit.Record(r, audit.Entry{Action: "export", ResourceType: "waitlist", Status: audit.StatusSuccess})
}

// csvCell quotes visitor-supplied values that a spreadsheet would
// evaluate as a formula.
func csvCell(value string) string {
	if value != "" && strings.ContainsRune("=+-@\t\r", rune(value[0])) {
		return "'" + value
	}
	return value
}
