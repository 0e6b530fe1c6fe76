package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/repository"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/viewer"
	"github.com/go-chi/chi/v5"
)

var errResourceGone = errors.New("transient resource revoked before it was served")

// FileView is a flattened product file as listed to clients. Embedded
// payloads are not echoed back; clients fetch them through the download or
// viewer endpoints.
type FileView struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       models.FileType `json:"type"`
	Label      string          `json:"label"`
	URL        string          `json:"url,omitempty"`
	Embedded   bool            `json:"embedded"`
	InlineView bool            `json:"inlineView"`
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	service   *service.ProductService
	resources *viewer.ResourceStore
	logger    *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *service.ProductService, resources *viewer.ResourceStore, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service:   service,
		resources: resources,
		logger:    logger,
	}
}

// ListProducts handles GET /api/product
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to list products", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products, h.logger)
}

// GetProduct handles GET /api/product/{productId}
// - 200: successful operation
// - 400: Invalid ID supplied
// - 404: Product not found
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	product, err := h.service.GetProduct(r.Context(), productID)
	if err != nil {
		h.writeLookupError(w, productID, err)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// ListFiles handles GET /api/product/{productId}/files
func (h *ProductHandler) ListFiles(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	files, err := h.service.ListFiles(r.Context(), productID)
	if err != nil {
		h.writeLookupError(w, productID, err)
		return
	}

	views := make([]FileView, 0, len(files))
	for _, f := range files {
		v := FileView{
			ID:         f.ID,
			Name:       f.Name,
			Type:       f.Type,
			Label:      f.Type.Label(),
			Embedded:   viewer.IsEmbedded(f.URL),
			InlineView: f.Type.SupportsInlineView(),
		}
		if !v.Embedded {
			v.URL = f.URL
		}
		views = append(views, v)
	}

	WriteJSON(w, http.StatusOK, views, h.logger)
}

// DownloadFile handles GET /api/product/{productId}/files/{fileId}/download
//
// Remote files redirect to their URL. Embedded PDFs are decoded into a
// transient resource that lives only for the duration of the response.
// Other embedded files are decoded and streamed as is.
func (h *ProductHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	fileID := chi.URLParam(r, "fileId")

	file, err := h.service.GetFile(r.Context(), productID, fileID)
	if err != nil {
		h.writeLookupError(w, productID, err)
		return
	}

	if !viewer.IsEmbedded(file.URL) {
		http.Redirect(w, r, file.URL, http.StatusFound)
		return
	}

	if file.Type == models.FileTypePDF {
		err = viewer.WithSource(h.resources, file, func(src viewer.Source) error {
			if !src.Transient() {
				return errResourceGone
			}
			res, data, ok := h.resources.Open(src.Resource.ID)
			if !ok {
				return errResourceGone
			}
			serveAttachment(w, r, file.Name, res.MimeType, res.CreatedAt, data)
			return nil
		})
	} else {
		var (
			mimeType string
			data     []byte
		)
		mimeType, data, err = viewer.DecodeDataURI(file.URL)
		if err == nil {
			serveAttachment(w, r, file.Name, mimeType, time.Time{}, data)
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, viewer.ErrDecode):
			h.logger.Warn("embedded file could not be decoded", "productId", productID, "fileId", fileID, "error", err)
			WriteError(w, http.StatusUnprocessableEntity, "File content could not be decoded", h.logger)
		case errors.Is(err, viewer.ErrStoreClosed):
			WriteError(w, http.StatusServiceUnavailable, "Service is shutting down", h.logger)
		default:
			h.logger.Error("failed to serve file", "productId", productID, "fileId", fileID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
		}
		return
	}

	h.logger.Info("file downloaded", "productId", productID, "fileId", fileID, "type", file.Type)
}

func (h *ProductHandler) productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "productId")
	id, ok := parseID(raw)
	if !ok {
		h.logger.Warn("invalid product ID format", "productId", raw)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
	}
	return id, ok
}

func (h *ProductHandler) writeLookupError(w http.ResponseWriter, productID int64, err error) {
	switch {
	case errors.Is(err, repository.ErrProductNotFound):
		h.logger.Info("product not found", "productId", productID)
		WriteError(w, http.StatusNotFound, "Product not found", h.logger)
	case errors.Is(err, service.ErrFileNotFound):
		WriteError(w, http.StatusNotFound, "File not found", h.logger)
	default:
		h.logger.Error("failed to get product", "productId", productID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
}

// serveAttachment writes data as a download named after the file, adding an
// extension derived from the MIME type when the name has none.
func serveAttachment(w http.ResponseWriter, r *http.Request, name, mimeType string, modtime time.Time, data []byte) {
	if path.Ext(name) == "" {
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			name += exts[0]
		}
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	http.ServeContent(w, r, name, modtime, bytes.NewReader(data))
}
