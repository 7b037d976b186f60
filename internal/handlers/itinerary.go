package handlers

import (
	"net/http"
	"time"

	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/models"
	"travel-discovery-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// ItineraryHandler handles itinerary HTTP requests
type ItineraryHandler struct {
	itinerary *services.ItineraryService
	now       func() time.Time
}

// NewItineraryHandler creates a new itinerary handler
func NewItineraryHandler(itinerary *services.ItineraryService) *ItineraryHandler {
	return &ItineraryHandler{
		itinerary: itinerary,
		now:       time.Now,
	}
}

// ItineraryView is the itinerary split into upcoming and past trips
type ItineraryView struct {
	Items []models.ItineraryItem `json:"items"`
	services.Trips
}

// List handles GET /api/v1/itinerary
func (h *ItineraryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.itinerary.List(middleware.GetToken(r.Context()))
	if err != nil {
		respondServiceError(w, err, "Failed to load itinerary")
		return
	}
	if items == nil {
		items = []models.ItineraryItem{}
	}
	respondJSON(w, http.StatusOK, ItineraryView{Items: items, Trips: services.Split(items, h.now())})
}

// Add handles POST /api/v1/itinerary
func (h *ItineraryHandler) Add(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req services.AddItineraryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.itinerary.Add(ctx, middleware.GetToken(ctx), req)
	if err != nil {
		respondServiceError(w, err, "Failed to add to itinerary")
		return
	}

	log.Info().
		Str("user_id", middleware.GetUserID(ctx)).
		Str("destination_id", req.DestinationID).
		Bool("saved", res.Advisory == nil).
		Msg("Itinerary item added")
	respondJSON(w, http.StatusCreated, res)
}

// Update handles PATCH /api/v1/itinerary/{item_id}
func (h *ItineraryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var patch services.ItineraryPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	res, err := h.itinerary.Update(ctx, middleware.GetToken(ctx), chi.URLParam(r, "item_id"), patch)
	if err != nil {
		respondServiceError(w, err, "Failed to update itinerary")
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Remove handles DELETE /api/v1/itinerary/{item_id}
func (h *ItineraryHandler) Remove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.itinerary.Remove(ctx, middleware.GetToken(ctx), chi.URLParam(r, "item_id"))
	if err != nil {
		respondServiceError(w, err, "Failed to update itinerary")
		return
	}
	respondJSON(w, http.StatusOK, res)
}
