package handlers

import (
	"net/http"
	"slices"
	"strings"

	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/services"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// clientMessage is a message received from the WebSocket client
type clientMessage struct {
	Type string `json:"type"`
}

// WebSocketHandler streams session and advisory events to clients
type WebSocketHandler struct {
	hub      *services.WSHub
	profiles *services.ProfileAdapter
	upgrader websocket.Upgrader
}

// NewWebSocketHandler creates a new WebSocket handler accepting browser
// connections from allowedOrigins, where "*" admits any origin
func NewWebSocketHandler(hub *services.WSHub, profiles *services.ProfileAdapter, allowedOrigins []string) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		profiles: profiles,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(allowedOrigins)},
	}
}

// originChecker admits requests without an Origin header (non-browser
// clients) and origins on the list
func originChecker(allowed []string) func(r *http.Request) bool {
	if slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return slices.ContainsFunc(allowed, func(o string) bool {
			return strings.EqualFold(o, origin)
		})
	}
}

// HandleWebSocket handles GET /ws?token=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	st, err := middleware.ValidateWebSocketToken(r.Context(), token, h.profiles)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}
	userID := st.Session.UID

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	h.sendState(userID, token)
	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(userID, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "ping":
			if err := h.hub.SendToUser(userID, services.Event{Type: services.EventPong}); err != nil {
				log.Error().Err(err).Str("user_id", userID).Msg("Failed to send pong")
			}
		case "state":
			h.sendState(userID, token)
		default:
			h.sendError(userID, "Unknown message type")
		}
	}
}

// sendState sends the current session state of token
func (h *WebSocketHandler) sendState(userID, token string) {
	st := h.profiles.State(token)
	event := services.Event{Type: services.EventSession, Status: st.Status, Profile: st.Profile}
	if err := h.hub.SendToUser(userID, event); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send session state")
	}
}

// sendError sends an error event to a user
func (h *WebSocketHandler) sendError(userID, message string) {
	if err := h.hub.SendToUser(userID, services.Event{Type: services.EventError, Message: message}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send error")
	}
}
