package handlers

import (
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"

	"photo-vault-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
)

const thumbnailMaxDim = 320

// Thumbnail handles GET /api/v1/photos/{filename}/thumbnail. It renders
// a downscaled JPEG of the photo, subject to the same access rules as
// the full image.
func (h *PhotoHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	rc, err := h.gallery.OpenMedia(r.Context(), viewer, filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer rc.Close()

	img, _, err := image.Decode(rc)
	if err != nil {
		respondError(w, "Unsupported image format", http.StatusUnsupportedMediaType)
		return
	}

	thumb := resize.Thumbnail(thumbnailMaxDim, thumbnailMaxDim, img, resize.Lanczos3)

	w.Header().Set("Content-Type", "image/jpeg")
	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: 80}); err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to encode thumbnail")
	}
}
