package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"photo-vault-backend/internal/middleware"
	"photo-vault-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AlbumHandler handles album-related HTTP requests
type AlbumHandler struct {
	albums *services.AlbumService
}

// NewAlbumHandler creates a new album handler
func NewAlbumHandler(albums *services.AlbumService) *AlbumHandler {
	return &AlbumHandler{albums: albums}
}

// List handles GET /api/v1/albums
func (h *AlbumHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	albums, err := h.albums.List(r.Context(), viewer)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Msg("Failed to list albums")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"albums": albums}, http.StatusOK)
}

// AddToAlbumRequest is the body of an album add request.
type AddToAlbumRequest struct {
	AlbumName  string   `json:"album_name"`
	PhotoNames []string `json:"photo_names"`
}

// Add handles POST /api/v1/albums/add
func (h *AlbumHandler) Add(w http.ResponseWriter, r *http.Request) {
	viewer := middleware.GetViewer(r.Context())

	var req AddToAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.AlbumName = strings.TrimSpace(req.AlbumName)
	if req.AlbumName == "" || len(req.PhotoNames) == 0 {
		respondError(w, "Album name and photo names required", http.StatusBadRequest)
		return
	}

	album, err := h.albums.Add(r.Context(), viewer, req.AlbumName, req.PhotoNames)
	if err != nil {
		log.Error().Err(err).Str("user_id", viewer.ID).Str("album", req.AlbumName).Msg("Failed to add to album")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, map[string]interface{}{"album": album}, http.StatusOK)
}
