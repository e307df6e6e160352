package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/Togather-Foundation/gallery/internal/api/pagination"
	"github.com/Togather-Foundation/gallery/internal/api/problem"
	"github.com/Togather-Foundation/gallery/internal/audit"
	"github.com/Togather-Foundation/gallery/internal/domain/ids"
	"github.com/Togather-Foundation/gallery/internal/domain/media"
	"github.com/Togather-Foundation/gallery/internal/sanitize"
	"github.com/Togather-Foundation/gallery/internal/validation"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

type AdminMediaHandler struct {
	Service *media.Service
	Audit   *audit.Logger
}

func NewAdminMediaHandler(service *media.Service, auditLogger *audit.Logger) *AdminMediaHandler {
	return &AdminMediaHandler{Service: service, Audit: auditLogger}
}

// List filters by folder, artist and a free-text q that matches filename,
// alt text and folder.
func (h *AdminMediaHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	artistID, err := ids.ParseOptionalUUID(query.Get("artist_id"))
	if err != nil {
		problem.BadRequest(w, r, "Invalid artist_id", err)
		return
	}
	filters := media.Filters{
		Query:    searchQuery(r),
		Folder:   strings.TrimSpace(query.Get("folder")),
		ArtistID: artistID,
	}
	page := pagination.FromRequest(r, pagination.MediaDefaultPerPage, pagination.MediaMaxPerPage)

	items, err := h.Service.List(r.Context(), filters, page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (h *AdminMediaHandler) Folders(w http.ResponseWriter, r *http.Request) {
	folders, err := h.Service.Folders(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(folders))
}

func (h *AdminMediaHandler) Get(w http.ResponseWriter, r *http.Request) {
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

// Upload accepts a multipart form with a "file" part plus optional alt,
// credit, folder and artist_id values.
func (h *AdminMediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge, "File too large", err)
			return
		}
		problem.BadRequest(w, r, "Invalid multipart form", err)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		problem.BadRequest(w, r, "No file provided", err)
		return
	}
	defer func() { _ = file.Close() }()
	if strings.TrimSpace(header.Filename) == "" {
		problem.BadRequest(w, r, "Missing filename", nil)
		return
	}

	artistID, err := ids.ParseOptionalUUID(r.FormValue("artist_id"))
	if err != nil {
		problem.BadRequest(w, r, "Invalid artist_id", err)
		return
	}

	created, err := h.Service.Upload(r.Context(), media.UploadParams{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		Alt:         formText(r, "alt"),
		Credit:      formText(r, "credit"),
		Folder:      formText(r, "folder"),
		ArtistID:    artistID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "upload", "media", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

type mediaUpdateRequest struct {
	Alt      *string    `json:"alt" validate:"omitnil,max=500"`
	Credit   *string    `json:"credit" validate:"omitnil,max=300"`
	Folder   *string    `json:"folder" validate:"omitnil,max=200"`
	ArtistID *uuid.UUID `json:"artist_id"`
}

func (h *AdminMediaHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req mediaUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Alt = sanitize.TextPtr(req.Alt)
	req.Credit = sanitize.TextPtr(req.Credit)
	req.Folder = sanitize.TextPtr(req.Folder)
	if err := validation.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), id, media.UpdateParams{
		Alt:      req.Alt,
		Credit:   req.Credit,
		Folder:   req.Folder,
		ArtistID: req.ArtistID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "update", "media", id)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the stored object before the row. A storage failure
// answers 500 and leaves the row in place.
func (h *AdminMediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.Audit.Record(r, audit.Entry{Action: "delete", ResourceType: "media", ResourceID: id.String(), Status: audit.StatusFailure})
		writeServiceError(w, r, err)
		return
	}
	recordMutation(h.Audit, r, "delete", "media", id)
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// formText returns a sanitized optional form value, nil when blank.
func formText(r *http.Request, key string) *string {
	value := sanitize.Text(r.FormValue(key))
	if value == "" {
		return nil
	}
	return &value
}
