package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/viewer"
	"github.com/go-chi/chi/v5"
)

// SelectFileRequest is the body of POST /api/viewer
type SelectFileRequest struct {
	ProductID int64  `json:"productId"`
	FileID    string `json:"fileId"`
}

// ViewerHandler drives the session's document viewer and serves the
// transient resources it creates.
type ViewerHandler struct {
	products  *service.ProductService
	resources *viewer.ResourceStore
	log       *slog.Logger
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(products *service.ProductService, resources *viewer.ResourceStore, log *slog.Logger) *ViewerHandler {
	return &ViewerHandler{
		products:  products,
		resources: resources,
		log:       log,
	}
}

// Select handles POST /api/viewer
// - 200: file resolved, viewer is ready
// - 404: product or file not found
// - 409: session ended concurrently
// - 422: file could not be resolved, viewer is in the error state
func (h *ViewerHandler) Select(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}

	var req SelectFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode viewer request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	file, err := h.products.GetFile(r.Context(), req.ProductID, req.FileID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			WriteError(w, http.StatusNotFound, "Product not found", h.log)
		case errors.Is(err, service.ErrFileNotFound):
			WriteError(w, http.StatusNotFound, "File not found", h.log)
		default:
			h.log.Error("failed to look up file", "productId", req.ProductID, "fileId", req.FileID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	snap, err := sess.Viewer.Select(file)
	if err != nil {
		if errors.Is(err, viewer.ErrClosed) {
			WriteError(w, http.StatusConflict, "Session has ended", h.log)
			return
		}
		h.log.Warn("file could not be resolved", "session_id", sess.ID, "fileId", file.ID, "error", err)
		WriteJSON(w, http.StatusUnprocessableEntity, snap, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, snap, h.log)
}

// Get handles GET /api/viewer
func (h *ViewerHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, sess.Viewer.Snapshot(), h.log)
}

// Clear handles DELETE /api/viewer
func (h *ViewerHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r, h.log)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, sess.Viewer.Clear(), h.log)
}

// ServeResource handles GET /api/resources/{resourceId}
// Live resources are served inline; revoked ones are gone for good.
func (h *ViewerHandler) ServeResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "resourceId")

	res, data, ok := h.resources.Open(id)
	if !ok {
		WriteError(w, http.StatusNotFound, "Resource not found", h.log)
		return
	}

	w.Header().Set("Content-Type", res.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": res.ID}))
	w.Header().Set("Cache-Control", "no-store")
	http.ServeContent(w, r, res.ID, res.CreatedAt, bytes.NewReader(data))
}

// ResourceStats handles GET /api/admin/resources
func (h *ViewerHandler) ResourceStats(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.resources.Stats(), h.log)
}
