package handlers

import (
	"net/http"

	"photo-vault-backend/internal/middleware"
	"photo-vault-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler upgrades viewer connections and registers them with
// the gallery event hub.
type WebSocketHandler struct {
	hub      *services.GalleryHub
	verifier *middleware.TokenVerifier
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.GalleryHub, verifier *middleware.TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, verifier: verifier}
}

// Handle handles GET /ws. The bearer token is passed as a query
// parameter because browsers cannot set headers on WebSocket upgrades.
func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "Token required", http.StatusUnauthorized)
		return
	}

	viewer, err := h.verifier.Verify(token)
	if err != nil {
		respondError(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(viewer, conn)

	go func() {
		defer h.hub.Unregister(viewer)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
