package services

import (
	"fmt"
	"sync"

	"travel-discovery-backend/internal/models"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over the WebSocket
const (
	EventSession  = "session"
	EventAdvisory = "advisory"
	EventError    = "error"
	EventPong     = "pong"
)

// Event represents a WebSocket message
type Event struct {
	Type     string              `json:"type"`
	Status   SessionStatus       `json:"status,omitempty"`
	Profile  *models.UserProfile `json:"profile,omitempty"`
	Advisory *Advisory           `json:"advisory,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a new WebSocket connection for a user, closing any
// previous one
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existingConn, exists := h.connections[userID]; exists {
		existingConn.Close()
	}
	h.connections[userID] = conn

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the connection of a user if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.connections[userID]; exists && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser sends an event to a specific user
func (h *WSHub) SendToUser(userID string, event Event) error {
	h.mu.RLock()
	conn, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// gorilla connections allow one concurrent writer
	h.mu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, data)
	h.mu.Unlock()
	if err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send event: %w", err)
	}
	return nil
}

// Publish sends event to the user if connected; offline users miss it
func (h *WSHub) Publish(userID string, event Event) {
	if !h.IsOnline(userID) {
		return
	}
	if err := h.SendToUser(userID, event); err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("type", event.Type).
			Msg("Failed to publish event")
	}
}

// IsOnline checks if a user has an open connection
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}
