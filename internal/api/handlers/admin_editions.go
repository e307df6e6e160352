package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/editions"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

type AdminEditionsHandler struct {
	Service *editions.Service
	Audit   *audit.Logger
}

func NewAdminEditionsHandler(service *editions.Service, auditLogger *audit.Logger) *AdminEditionsHandler {
	return &AdminEditionsHandler{Service: service, Audit: auditLogger}
}

// editionRequest follows artworkRequest with an edition size such as
// "50 + 5 AP".
type editionRequest struct {
	ArtistID    *uuid.UUID   `json:"artist_id"`
	Title       *string      `json:"title" validate:"omitnil,min=1,max=300"`
	Year        *int32       `json:"year" validate:"omitnil,min=0,max=9999"`
	Medium      *string      `json:"medium" validate:"omitnil,max=300"`
	Dimensions  *string      `json:"dimensions" validate:"omitnil,max=200"`
	EditionSize *string      `json:"edition_size" validate:"omitnil,max=100"`
	PriceNote   *string      `json:"price_note" validate:"omitnil,max=200"`
	ArtsperURL  *string      `json:"artsper_url" validate:"omitnil,weburl"`
	MediaIDs    *[]uuid.UUID `json:"media_ids"`
	Published   *bool        `json:"published"`
}

func (req *editionRequest) clean() {
	req.Title = sanitize.TextPtr(req.Title)
	req.Medium = sanitize.TextPtr(req.Medium)
	req.Dimensions = sanitize.TextPtr(req.Dimensions)
	req.EditionSize = sanitize.TextPtr(req.EditionSize)
	req.PriceNote = sanitize.TextPtr(req.PriceNote)
	req.ArtsperURL = sanitize.TextPtr(req.ArtsperURL)
}

func (req editionRequest) fields() editions.Fields {
	return editions.Fields{
		ArtistID:    req.ArtistID,
		Title:       req.Title,
		Year:        req.Year,
		Medium:      req.Medium,
		Dimensions:  req.Dimensions,
		EditionSize: req.EditionSize,
		PriceNote:   req.PriceNote,
		ArtsperURL:  req.ArtsperURL,
	}
}

func (h *AdminEditionsHandler) decode(w http.ResponseWriter, r *http.Request) (editionRequest, bool) {
	var req editionRequest
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

func (h *AdminEditionsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Service.List(r.Context(), editions.Filters{Query: searchQuery(r)}, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *AdminEditionsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminEditionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), editions.CreateParams{
		Fields:    req.fields(),
		MediaIDs:  derefIDs(req.MediaIDs),
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "create", "edition", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminEditionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, editions.UpdateParams{
		Fields:    req.fields(),
		MediaIDs:  req.MediaIDs,
		Published: req.Published,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "update", "edition", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminEditionsHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.Service.TogglePublish(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "publish", "edition", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminEditionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "delete", "edition", id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
