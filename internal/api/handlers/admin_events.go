package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/events"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

type AdminEventsHandler struct {
	Service *events.Service
	Audit   *audit.Logger
}

func NewAdminEventsHandler(service *events.Service, auditLogger *audit.Logger) *AdminEventsHandler {
	return &AdminEventsHandler{Service: service, Audit: auditLogger}
}

// eventRequest takes RFC3339 timestamps. artist_ids replaces the lineup
// when present.
type eventRequest struct {
	Title         *string      `json:"title" validate:"omitnil,min=1,max=300"`
	StartAt       *time.Time   `json:"start_at"`
	EndAt         *time.Time   `json:"end_at"`
	Location      *string      `json:"location" validate:"omitnil,max=300"`
	DescriptionMD *string      `json:"description_md"`
	HeroMediaID   *uuid.UUID   `json:"hero_media_id"`
	ArtistIDs     *[]uuid.UUID `json:"artist_ids"`
	Published     *bool        `json:"published"`
}

func (req *eventRequest) clean() {
	req.Title = sanitize.TextPtr(req.Title)
	req.Location = sanitize.TextPtr(req.Location)
	req.DescriptionMD = sanitize.MarkdownPtr(req.DescriptionMD)
}

func (req eventRequest) fields() events.Fields {
	return events.Fields{
		Title:         req.Title,
		StartAt:       req.StartAt,
		EndAt:         req.EndAt,
		Location:      req.Location,
		DescriptionMD: req.DescriptionMD,
		HeroMediaID:   req.HeroMediaID,
	}
}

func (h *AdminEventsHandler) decode(w http.ResponseWriter, r *http.Request) (eventRequest, bool) {
	var req eventRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	req.clean()
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return req, false
	}
	return req, true
}

func (h *AdminEventsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Service.List(r.Context(), events.Filters{Query: searchQuery(r)}, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *AdminEventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	item, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *AdminEventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), events.CreateParams{
		Fields:    req.fields(),
		ArtistIDs: derefIDs(req.ArtistIDs),
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "create", "event", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminEventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, events.UpdateParams{
		Fields:    req.fields(),
		ArtistIDs: req.ArtistIDs,
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "update", "event", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminEventsHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.Service.TogglePublish(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "publish", "event", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminEventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "delete", "event", id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
