package handlers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"photo-vault-backend/internal/middleware"
	"photo-vault-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".heic": true,
}

var allowedMimeTypes = map[string]bool{
	"image/jpeg": true, "image/png": true, "image/webp": true, "image/gif": true, "image/heic": true,
}

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	gallery        *services.GalleryService
	maxUploadBytes int64
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(gallery *services.GalleryService, maxUploadBytes int64) *PhotoHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &PhotoHandler{
		gallery:        gallery,
		maxUploadBytes: maxUploadBytes,
	}
}

// List handles GET /api/v1/photos
func (h *PhotoHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	photos, err := h.gallery.ListVisible(r.Context(), viewer)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to list photos")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"photos": photos}, http.StatusOK)
}

// Upload handles POST /api/v1/photos/upload
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, "File too large or malformed upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	if !allowedExtensions[ext] || (contentType != "" && !allowedMimeTypes[contentType]) {
		respondError(w, "Only image files are allowed", http.StatusBadRequest)
		return
	}

	photo, err := h.gallery.Upload(r.Context(), viewer, header.Filename, file)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Str("filename", header.Filename).Msg("Failed to upload photo")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", viewer.ID).Str("filename", photo.Filename).Msg("Photo uploaded")
	respondJSON(w, map[string]string{"filename": photo.Filename}, http.StatusOK)
}

// Get handles GET /api/v1/photos/{filename}
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	rc, err := h.gallery.OpenMedia(r.Context(), viewer, filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := io.Copy(w, rc); err != nil {
		log.Warn().Err(err).Str("filename", filename).Msg("Failed to stream photo")
	}
}

// Favorite handles POST /api/v1/photos/{filename}/favorite
func (h *PhotoHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	favorite, err := h.gallery.ToggleFavorite(r.Context(), viewer, filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]bool{"favorite": favorite}, http.StatusOK)
}

// ShareRequest is the body of a share request.
type ShareRequest struct {
	Email string `json:"email"`
}

// Share handles POST /api/v1/photos/{filename}/share
func (h *PhotoHandler) Share(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, "A valid email is required", http.StatusBadRequest)
		return
	}

	if err := h.gallery.Share(r.Context(), viewer, filename, req.Email); err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Str("filename", filename).Msg("Failed to share photo")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", viewer.ID).Str("filename", filename).Str("recipient", req.Email).Msg("Photo shared")
	respondJSON(w, map[string]string{"message": "Photo shared"}, http.StatusOK)
}

// Unshare handles DELETE /api/v1/photos/{filename}/share/{email}
func (h *PhotoHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	email, err := url.PathUnescape(chi.URLParam(r, "email"))
	if err != nil || email == "" {
		respondError(w, "A valid email is required", http.StatusBadRequest)
		return
	}
	email = strings.TrimSpace(strings.ToLower(email))

	if err := h.gallery.Unshare(r.Context(), viewer, filename, email); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]string{"message": "Share removed"}, http.StatusOK)
}

// SharedWith handles GET /api/v1/photos/{filename}/shared-with
func (h *PhotoHandler) SharedWith(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	entries, err := h.gallery.SharedWith(r.Context(), viewer, filename)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"shared_with": entries}, http.StatusOK)
}

// SharedByMe handles GET /api/v1/photos/shared/by-me
func (h *PhotoHandler) SharedByMe(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	records, err := h.gallery.SharedByMe(r.Context(), viewer)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to list outgoing shares")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"shares": records}, http.StatusOK)
}

// SharedWithMe handles GET /api/v1/photos/shared/with-me
func (h *PhotoHandler) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	records, err := h.gallery.SharedWithMe(r.Context(), viewer)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to list incoming shares")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"shares": records}, http.StatusOK)
}

// Trash handles DELETE /api/v1/photos/{filename}
func (h *PhotoHandler) Trash(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "filename")

	if err := h.gallery.Trash(r.Context(), viewer, filename); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]string{"message": "Trashed"}, http.StatusOK)
}

// ListTrash handles GET /api/v1/photos/trash
func (h *PhotoHandler) ListTrash(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	listing, err := h.gallery.ListTrash(r.Context(), viewer)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to list trash")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"files": listing}, http.StatusOK)
}

// Restore handles POST /api/v1/photos/trash/{name}/restore
func (h *PhotoHandler) Restore(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "name")

	if err := h.gallery.Restore(r.Context(), viewer, filename); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]string{"message": "Restored"}, http.StatusOK)
}

// DeleteForever handles DELETE /api/v1/photos/trash/{name}
func (h *PhotoHandler) DeleteForever(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())
	filename := chi.URLParam(r, "name")

	if err := h.gallery.PermanentlyDelete(r.Context(), viewer, filename); err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Str("filename", filename).Msg("Failed to permanently delete photo")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]string{"message": "Deleted"}, http.StatusOK)
}
