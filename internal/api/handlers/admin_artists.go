package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/artists"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

type AdminArtistsHandler struct {
	Service *artists.Service
	Audit   *audit.Logger
}

func NewAdminArtistsHandler(service *artists.Service, auditLogger *audit.Logger) *AdminArtistsHandler {
	return &AdminArtistsHandler{Service: service, Audit: auditLogger}
}

// artistRequest is shared by create and update. Omitted fields keep their
// stored value on update.
type artistRequest struct {
	Name            *string    `json:"name" validate:"omitnil,min=1,max=200"`
	BioMD           *string    `json:"bio_md"`
	PortraitMediaID *uuid.UUID `json:"portrait_media_id"`
	ArtsperURL      *string    `json:"artsper_url" validate:"omitnil,weburl"`
	WebsiteURL      *string    `json:"website_url" validate:"omitnil,weburl"`
	InstagramURL    *string    `json:"instagram_url" validate:"omitnil,weburl"`
	Published       *bool      `json:"published"`
}

func (req *artistRequest) clean() {
	req.Name = sanitize.TextPtr(req.Name)
	req.BioMD = sanitize.MarkdownPtr(req.BioMD)
	req.ArtsperURL = sanitize.TextPtr(req.ArtsperURL)
	req.WebsiteURL = sanitize.TextPtr(req.WebsiteURL)
	req.InstagramURL = sanitize.TextPtr(req.InstagramURL)
}

func (req artistRequest) fields() artists.Fields {
	return artists.Fields{
		Name:            req.Name,
		BioMD:           req.BioMD,
		PortraitMediaID: req.PortraitMediaID,
		ArtsperURL:      req.ArtsperURL,
		WebsiteURL:      req.WebsiteURL,
		InstagramURL:    req.InstagramURL,
	}
}

func (h *AdminArtistsHandler) decode(w http.ResponseWriter, r *http.Request) (artistRequest, bool) {
	var req artistRequest
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

func (h *AdminArtistsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Service.List(r.Context(), artists.Filters{Query: searchQuery(r)}, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *AdminArtistsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminArtistsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), artists.CreateParams{Fields: req.fields(), Published: req.Published})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "create", "artist", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminArtistsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, artists.UpdateParams{Fields: req.fields(), Published: req.Published})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "update", "artist", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminArtistsHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.Service.TogglePublish(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "publish", "artist", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminArtistsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "delete", "artist", id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
