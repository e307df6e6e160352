package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/pages"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

type AdminPagesHandler struct {
	Service *pages.Service
	Audit   *audit.Logger
}

func NewAdminPagesHandler(service *pages.Service, auditLogger *audit.Logger) *AdminPagesHandler {
	return &AdminPagesHandler{Service: service, Audit: auditLogger}
}

type pageRequest struct {
	Title       *string    `json:"title" validate:"omitnil,min=1,max=300"`
	BodyMD      *string    `json:"body_md"`
	HeroMediaID *uuid.UUID `json:"hero_media_id"`
}

func (h *AdminPagesHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *AdminPagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.Service.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *AdminPagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var req pageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Title = sanitize.TextPtr(req.Title)
	req.BodyMD = sanitize.MarkdownPtr(req.BodyMD)
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), key, pages.Fields{
		Title:       req.Title,
		BodyMD:      req.BodyMD,
		HeroMediaID: req.HeroMediaID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Audit.Record(r, audit.Entry{Action: "update", ResourceType: "page", ResourceID: key, Status: audit.StatusSuccess})
	writeJSON(w, http.StatusOK, updated)
}
