package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"photo-vault-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondServiceError maps lifecycle-engine errors onto HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "Photo not found", http.StatusNotFound)
	case errors.Is(err, services.ErrAccessDenied):
		respondError(w, "Access denied", http.StatusForbidden)
	case errors.Is(err, services.ErrAlreadyShared):
		respondError(w, "Photo already shared with this user", http.StatusConflict)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
