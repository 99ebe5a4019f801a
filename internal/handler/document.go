package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"sitedocs/internal/config"
	"sitedocs/internal/domain"
	"sitedocs/internal/domain/models"
	"sitedocs/internal/domain/services"
	"sitedocs/internal/filekind"
	"sitedocs/internal/httputil"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	docService services.DocumentService
	kinds      *filekind.Registry
	logger     *slog.Logger
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docService services.DocumentService, kinds *filekind.Registry, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		kinds:      kinds,
		logger:     logger,
	}
}

// CreateDocument creates a new folder or file row
// POST /api/documents
// Returns 201 if created, 409 with the existing folder on a duplicate
// folder name under the same parent
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	var req services.CreateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.CreatedBy = userID

	doc, err := h.docService.CreateDocument(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func() (*models.Document, error) {
			var conflictErr *domain.ConflictError
			errors.As(err, &conflictErr)
			return h.docService.GetDocument(r.Context(), userID, conflictErr.ResourceID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// GetDocument retrieves a document by ID
// GET /api/documents/{id}
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// UpdateDocument renames and/or moves a document
// PATCH /api/documents/{id}
func (h *DocumentHandler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	var req services.UpdateDocumentRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	doc, err := h.docService.UpdateDocument(r.Context(), userID, id, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// DeleteDocument deletes a document and its whole subtree
// DELETE /api/documents/{id}
func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	if err := h.docService.DeleteDocument(r.Context(), userID, id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadFile stores a binary and creates its file document
// POST /api/documents/upload (multipart: file, project_id, parent_id?)
func (h *DocumentHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	defer file.Close()

	projectID, err := parseUUID(r.FormValue("project_id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid project ID format")
		return
	}

	var parentID *string
	if raw := r.FormValue("parent_id"); raw != "" {
		parsed, err := parseUUID(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "Invalid parent ID format")
			return
		}
		parentID = &parsed
	}

	req := &services.UploadFileRequest{
		ProjectID:   projectID,
		ParentID:    parentID,
		Name:        header.Filename,
		Content:     file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		CreatedBy:   userID,
	}

	doc, err := h.docService.UploadFile(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// viewerResponse tells the client how to display a file document.
type viewerResponse struct {
	Kind      filekind.Kind `json:"kind"`
	ViewerURL string        `json:"viewerUrl,omitempty"`
	FileURL   string        `json:"fileUrl,omitempty"`
	URN       string        `json:"urn,omitempty"`
}

// GetViewer resolves the viewer for a file document: a direct or
// iframe URL for images/PDF/office files, or the derivative urn for
// CAD models destined for the Forge viewer.
// GET /api/documents/{id}/viewer
func (h *DocumentHandler) GetViewer(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)

	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid document ID format")
		return
	}

	doc, err := h.docService.GetDocument(r.Context(), userID, id)
	if err != nil {
		handleError(w, err)
		return
	}

	if doc.IsFolder() {
		httputil.RespondError(w, http.StatusBadRequest, "Folders have no viewer")
		return
	}
	if doc.FileURL == nil {
		httputil.RespondError(w, http.StatusConflict, "File has no stored content yet")
		return
	}

	resp := viewerResponse{
		Kind:    h.kinds.KindOf(doc.Name),
		FileURL: *doc.FileURL,
	}

	switch resp.Kind {
	case filekind.KindModel:
		if doc.URN != nil {
			resp.URN = *doc.URN
		}
	default:
		resp.ViewerURL = h.kinds.ViewerURL(doc.Name, *doc.FileURL)
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}
