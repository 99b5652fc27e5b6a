package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getesper/Gladiator-MegaFlexTronics-POC1/internal/objectstore"
)

// ThumbnailHandler streams stored pose snapshots.
type ThumbnailHandler struct {
	objects objectstore.Store
	logger  *slog.Logger
}

// NewThumbnailHandler creates a new ThumbnailHandler.
func NewThumbnailHandler(objects objectstore.Store, logger *slog.Logger) *ThumbnailHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ThumbnailHandler{objects: objects, logger: logger}
}

// ServeHTTP handles GET /api/thumbnails/{key}.
func (h *ThumbnailHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key, err := objectstore.CleanKey(strings.TrimPrefix(r.URL.Path, "/api/thumbnails/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid thumbnail key")
		return
	}

	rc, err := h.objects.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Thumbnail not found")
			return
		}
		if errors.Is(err, objectstore.ErrInvalidKey) {
			writeError(w, http.StatusBadRequest, "Invalid thumbnail key")
			return
		}
		h.logger.Error("open thumbnail", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to read thumbnail")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Debug("thumbnail write interrupted", "key", key, "error", err)
	}
}
