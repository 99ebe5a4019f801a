package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"sitedocs/internal/config"
	"sitedocs/internal/domain"
	"sitedocs/internal/domain/services"
	"sitedocs/internal/httputil"
	"sitedocs/internal/service/forge"
)

// ForgeHandler exposes the Autodesk integration endpoints. These keep
// the plain {error: ...} response shapes the viewer client expects
// instead of problem documents.
type ForgeHandler struct {
	client     *forge.Client
	oss        *forge.OSSService
	derivative *forge.DerivativeService
	docService services.DocumentService
	logger     *slog.Logger
}

// NewForgeHandler creates a new forge handler
func NewForgeHandler(
	client *forge.Client,
	oss *forge.OSSService,
	derivative *forge.DerivativeService,
	docService services.DocumentService,
	logger *slog.Logger,
) *ForgeHandler {
	return &ForgeHandler{
		client:     client,
		oss:        oss,
		derivative: derivative,
		docService: docService,
		logger:     logger,
	}
}

// GetToken exchanges client credentials for a viewer token
// GET /api/forge/token[?scope=]
func (h *ForgeHandler) GetToken(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")

	token, err := h.client.GetToken(r.Context(), scope)
	if err != nil {
		var exchangeErr *domain.TokenExchangeError
		if errors.As(err, &exchangeErr) {
			httputil.RespondJSON(w, http.StatusInternalServerError, map[string]any{
				"error":      "failed to obtain access token",
				"details_v2": exchangeErr.V2.Error(),
				"details_v1": exchangeErr.V1.Error(),
			})
			return
		}
		httputil.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, token)
}

// Upload stores a CAD file in the Forge bucket for translation
// POST /api/forge/upload (multipart form field `file`)
func (h *ForgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error": "invalid multipart form",
		})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error": "missing file field",
		})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": "failed to read upload",
		})
		return
	}

	result, err := h.oss.UploadObject(r.Context(), header.Filename, data)
	if err != nil {
		h.logger.Error("forge upload failed", "file", header.Filename, "error", err)
		httputil.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
		})
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

type translateRequest struct {
	ObjectID string `json:"objectId"`
	// DocumentID, when set, records the resulting urn on that document.
	DocumentID string `json:"documentId,omitempty"`
	// Wait blocks until the translation reaches a terminal status
	// instead of returning right after submission.
	Wait bool `json:"wait,omitempty"`
}

// Translate submits an SVF translation job
// POST /api/forge/translate (JSON body {objectId})
func (h *ForgeHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error": "invalid request body",
		})
		return
	}
	if req.ObjectID == "" {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error": "objectId is required",
		})
		return
	}

	job, err := h.derivative.StartTranslation(r.Context(), req.ObjectID)
	if err != nil {
		h.logger.Error("translation submit failed", "object_id", req.ObjectID, "error", err)
		httputil.RespondJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
		})
		return
	}

	status := job.Result
	if req.Wait {
		manifest, err := h.derivative.WaitForTranslation(r.Context(), job.URN)
		if err != nil {
			httputil.RespondJSON(w, http.StatusInternalServerError, map[string]any{
				"error": err.Error(),
				"urn":   job.URN,
			})
			return
		}
		status = string(manifest.Status)
	}

	if req.DocumentID != "" {
		userID := httputil.GetUserID(r)
		if _, err := h.docService.SetDocumentURN(r.Context(), userID, req.DocumentID, job.URN); err != nil {
			h.logger.Error("failed to record urn on document",
				"document_id", req.DocumentID,
				"urn", job.URN,
				"error", err)
		}
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]any{
		"urn":    job.URN,
		"status": status,
	})
}

// GetManifest returns the raw translation manifest
// GET /api/forge/translate?urn=
func (h *ForgeHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	urn := r.URL.Query().Get("urn")
	if urn == "" {
		httputil.RespondJSON(w, http.StatusBadRequest, map[string]any{
			"error": "urn is required",
		})
		return
	}

	manifest, err := h.derivative.GetManifest(r.Context(), urn)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		httputil.RespondJSON(w, status, map[string]any{
			"error": err.Error(),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(manifest.Raw)
}
