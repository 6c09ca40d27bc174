package services

import (
	"encoding/json"
	"sync"
	"time"

	"photo-vault-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// GalleryEvent is a WebSocket message describing a gallery change.
type GalleryEvent struct {
	Type      string `json:"type"`
	Filename  string `json:"filename,omitempty"`
	ActorID   string `json:"actor_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// GalleryHub manages WebSocket connections and fans gallery events out
// to affected viewers. Delivery is best effort; offline viewers just
// miss the event.
type GalleryHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
	byEmail     map[string]string
}

// NewGalleryHub creates a new gallery event hub
func NewGalleryHub() *GalleryHub {
	return &GalleryHub{
		connections: make(map[string]*websocket.Conn),
		byEmail:     make(map[string]string),
	}
}

// Register registers a viewer's WebSocket connection, replacing any
// existing one.
func (h *GalleryHub) Register(viewer models.Viewer, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.connections[viewer.ID]; ok {
		existing.Close()
	}
	h.connections[viewer.ID] = conn
	if viewer.Email != "" {
		h.byEmail[viewer.Email] = viewer.ID
	}

	log.Info().Str("user_id", viewer.ID).Msg("WebSocket connection registered")
}

// Unregister removes a viewer's WebSocket connection.
func (h *GalleryHub) Unregister(viewer models.Viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conn, ok := h.connections[viewer.ID]; ok {
		conn.Close()
		delete(h.connections, viewer.ID)
		log.Info().Str("user_id", viewer.ID).Msg("WebSocket connection unregistered")
	}
	if viewer.Email != "" {
		delete(h.byEmail, viewer.Email)
	}
}

// IsOnline checks if a viewer has a live connection
func (h *GalleryHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// PhotoUploaded notifies the uploader's other sessions.
func (h *GalleryHub) PhotoUploaded(ownerID, filename string) {
	h.sendToUser(ownerID, GalleryEvent{Type: "photo_uploaded", Filename: filename, ActorID: ownerID, Timestamp: time.Now().Unix()})
}

// PhotoShared notifies the owner and the recipient of a new share.
func (h *GalleryHub) PhotoShared(ownerID, recipientEmail, filename string) {
	event := GalleryEvent{Type: "photo_shared", Filename: filename, ActorID: ownerID, Timestamp: time.Now().Unix()}
	h.sendToUser(ownerID, event)
	h.sendToEmail(recipientEmail, event)
}

// PhotoUnshared notifies the owner and the recipient of a revoked share.
func (h *GalleryHub) PhotoUnshared(ownerID, recipientEmail, filename string) {
	event := GalleryEvent{Type: "photo_unshared", Filename: filename, ActorID: ownerID, Timestamp: time.Now().Unix()}
	h.sendToUser(ownerID, event)
	h.sendToEmail(recipientEmail, event)
}

func (h *GalleryHub) sendToUser(userID string, event GalleryEvent) {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal gallery event")
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to send gallery event, dropping connection")
		h.mu.Lock()
		if current, stillThere := h.connections[userID]; stillThere && current == conn {
			conn.Close()
			delete(h.connections, userID)
		}
		h.mu.Unlock()
	}
}

func (h *GalleryHub) sendToEmail(email string, event GalleryEvent) {
	if email == "" {
		return
	}
	h.mu.RLock()
	userID, ok := h.byEmail[email]
	h.mu.RUnlock()
	if ok {
		h.sendToUser(userID, event)
	}
}
