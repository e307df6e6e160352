package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/posts"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

type AdminPostsHandler struct {
	Service *posts.Service
	Audit   *audit.Logger
}

func NewAdminPostsHandler(service *posts.Service, auditLogger *audit.Logger) *AdminPostsHandler {
	return &AdminPostsHandler{Service: service, Audit: auditLogger}
}

type postRequest struct {
	Title       *string    `json:"title" validate:"omitnil,min=1,max=300"`
	BodyMD      *string    `json:"body_md"`
	HeroMediaID *uuid.UUID `json:"hero_media_id"`
	Published   *bool      `json:"published"`
}

func (req postRequest) fields() posts.Fields {
	return posts.Fields{
		Title:       req.Title,
		BodyMD:      sanitize.MarkdownPtr(req.BodyMD),
		HeroMediaID: req.HeroMediaID,
	}
}

func (h *AdminPostsHandler) decode(w http.ResponseWriter, r *http.Request) (postRequest, bool) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	req.Title = sanitize.TextPtr(req.Title)
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return req, false
	}
	return req, true
}

func (h *AdminPostsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.FromRequest(r, pagination.DefaultPerPage, pagination.MaxPerPage)
	items, err := h.Service.List(r.Context(), posts.Filters{Query: searchQuery(r)}, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *AdminPostsHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *AdminPostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), posts.CreateParams{Fields: req.fields(), Published: req.Published})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "create", "post", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (h *AdminPostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	updated, err := h.Service.Update(r.Context(), id, posts.UpdateParams{Fields: req.fields(), Published: req.Published})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "update", "post", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminPostsHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	updated, err := h.Service.TogglePublish(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "publish", "post", id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *AdminPostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "delete", "post", id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
