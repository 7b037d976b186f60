package handlers

import (
	"net/http"

	"travel-discovery-backend/internal/baas"
	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles account and session HTTP requests
type AuthHandler struct {
	profiles *services.ProfileAdapter
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(profiles *services.ProfileAdapter) *AuthHandler {
	return &AuthHandler{
		profiles: profiles,
	}
}

// RegisterRequest is the body of POST /api/v1/auth/register
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

// LoginRequest is the body of POST /api/v1/auth/login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse carries the session token and what is known about it
type SessionResponse struct {
	Token   string                `json:"token"`
	Session *baas.Session         `json:"session"`
	State   services.SessionState `json:"state"`
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.profiles.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		ev := log.Error().Err(err).Str("email", req.Email)
		if session != nil {
			ev = ev.Str("user_id", session.UID)
		}
		ev.Msg("Failed to register account")
		respondServiceError(w, err, "Failed to create account")
		return
	}

	respondJSON(w, http.StatusCreated, SessionResponse{
		Token:   session.Token,
		Session: session,
		State:   h.profiles.State(session.Token),
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	session, err := h.profiles.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", req.Email).Msg("Sign-in failed")
		respondServiceError(w, err, "Failed to sign in")
		return
	}

	log.Info().Str("user_id", session.UID).Msg("User signed in")
	respondJSON(w, http.StatusOK, SessionResponse{
		Token:   session.Token,
		Session: session,
		State:   h.profiles.State(session.Token),
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := middleware.GetToken(r.Context())
	_ = h.profiles.SignOut(r.Context(), token)
	w.WriteHeader(http.StatusNoContent)
}

// Session handles GET /api/v1/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.profiles.State(middleware.GetToken(r.Context())))
}
