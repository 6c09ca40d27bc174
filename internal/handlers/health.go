package handlers

import "net/http"

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
