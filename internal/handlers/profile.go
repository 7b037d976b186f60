package handlers

import (
	"net/http"

	"travel-discovery-backend/internal/catalog"
	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/models"
	"travel-discovery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ProfileHandler handles profile HTTP requests
type ProfileHandler struct {
	profiles  *services.ProfileAdapter
	itinerary *services.ItineraryService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles *services.ProfileAdapter, itinerary *services.ItineraryService) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		itinerary: itinerary,
	}
}

// ProfilePatchRequest lists the editable profile fields. Omitted fields are
// left as they are.
type ProfilePatchRequest struct {
	DisplayName         *string `json:"displayName" validate:"omitempty,min=1,max=100"`
	Bio                 *string `json:"bio" validate:"omitempty,max=500"`
	FavoriteDestination *string `json:"favoriteDestination" validate:"omitempty,max=100"`
	TravelGoal          *string `json:"travelGoal" validate:"omitempty,max=200"`
}

// SurveyResponse is the result of completing the preference survey
type SurveyResponse struct {
	Preferences     *models.UserPreferences `json:"preferences"`
	Recommendations []models.Destination    `json:"recommendations"`
	Advisory        *services.Advisory      `json:"advisory,omitempty"`
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.profiles.State(middleware.GetToken(r.Context())))
}

// Update handles PATCH /api/v1/profile
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req ProfilePatchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	profile, advisory, err := h.profiles.UpdateProfile(ctx, middleware.GetToken(ctx), services.ProfileUpdate{
		DisplayName:         req.DisplayName,
		Bio:                 req.Bio,
		FavoriteDestination: req.FavoriteDestination,
		TravelGoal:          req.TravelGoal,
	})
	if err != nil {
		respondWriteError(w, err, advisory, "Failed to update profile")
		return
	}
	if profile == nil {
		respondServiceError(w, services.ErrNoSession, "")
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Stats handles GET /api/v1/profile/stats
func (h *ProfileHandler) Stats(w http.ResponseWriter, r *http.Request) {
	profile := h.profiles.State(middleware.GetToken(r.Context())).Profile
	if profile == nil {
		respondServiceError(w, services.ErrNoSession, "")
		return
	}
	respondJSON(w, http.StatusOK, services.Stats(profile))
}

// Saved handles GET /api/v1/profile/saved
func (h *ProfileHandler) Saved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.itinerary.Saved(middleware.GetToken(r.Context()))
	if err != nil {
		respondServiceError(w, err, "Failed to load saved destinations")
		return
	}
	respondJSON(w, http.StatusOK, saved)
}

// ToggleSaved handles POST /api/v1/profile/saved/{destination_id}
func (h *ProfileHandler) ToggleSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	destinationID := chi.URLParam(r, "destination_id")

	profile, advisory, err := h.itinerary.ToggleSaved(ctx, middleware.GetToken(ctx), destinationID)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", middleware.GetUserID(ctx)).
			Str("destination_id", destinationID).
			Msg("Failed to toggle saved destination")
		respondWriteError(w, err, advisory, "Failed to update saved destinations")
		return
	}
	if profile == nil {
		respondServiceError(w, services.ErrNoSession, "")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"savedDestinations": profile.SavedDestinations,
		"saved":             profile.IsSaved(destinationID),
	})
}

// CompleteSurvey handles PUT /api/v1/profile/preferences. The preferences
// and recommendations are returned even when saving them failed.
func (h *ProfileHandler) CompleteSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.UserPreferences
	if !decodeBody(w, r, &req) {
		return
	}

	prefs, advisory := h.itinerary.CompleteSurvey(ctx, middleware.GetToken(ctx), req)
	log.Info().
		Str("user_id", middleware.GetUserID(ctx)).
		Msg("Preference survey completed")

	respondJSON(w, http.StatusOK, SurveyResponse{
		Preferences: prefs,
		Recommendations: services.Recommend(catalog.All(), services.RecommendQuery{
			Preferences: prefs,
			Sort:        services.SortRelevance,
		}),
		Advisory: advisory,
	})
}
