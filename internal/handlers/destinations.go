package handlers

import (
	"net/http"
	"strings"
	"time"

	"travel-discovery-backend/internal/catalog"
	"travel-discovery-backend/internal/middleware"
	"travel-discovery-backend/internal/models"
	"travel-discovery-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// DestinationHandler serves the catalog and recommendations
type DestinationHandler struct {
	profiles *services.ProfileAdapter
	now      func() time.Time
}

// NewDestinationHandler creates a new destination handler
func NewDestinationHandler(profiles *services.ProfileAdapter) *DestinationHandler {
	return &DestinationHandler{
		profiles: profiles,
		now:      time.Now,
	}
}

// List handles GET /api/v1/destinations
func (h *DestinationHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.All())
}

// Trending handles GET /api/v1/destinations/trending
func (h *DestinationHandler) Trending(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, catalog.Trending())
}

// Search handles GET /api/v1/destinations/search?q=&category=
func (h *DestinationHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	respondJSON(w, http.StatusOK, catalog.Search(q.Get("q"), q.Get("category")))
}

// Get handles GET /api/v1/destinations/{id}
func (h *DestinationHandler) Get(w http.ResponseWriter, r *http.Request) {
	dest, ok := catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, services.ErrDestinationNotFound.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, dest)
}

// Draft handles GET /api/v1/destinations/{id}/draft
func (h *DestinationHandler) Draft(w http.ResponseWriter, r *http.Request) {
	dest, ok := catalog.ByID(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, services.ErrDestinationNotFound.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, services.DefaultDraft(dest, h.now()))
}

// Recommend handles GET /api/v1/recommendations. Preferences come from the
// query when any preference parameter is set, otherwise from the caller's
// stored profile. Anonymous callers without parameters get the catalog.
func (h *DestinationHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sort := services.SortKey(q.Get("sort"))
	if sort == "" {
		sort = services.SortRelevance
	}
	if !sort.Valid() {
		respondError(w, "sort must be one of: relevance rating budget", http.StatusBadRequest)
		return
	}

	prefs := preferencesFromQuery(q.Get("interests"), q.Get("budget"), q.Get("travel_style"))
	if prefs != nil && prefs.Budget != "" && !prefs.Budget.Valid() {
		respondError(w, "budget must be one of: low medium high", http.StatusBadRequest)
		return
	}
	if prefs == nil {
		if token := middleware.GetToken(r.Context()); token != "" {
			if profile := h.profiles.State(token).Profile; profile != nil {
				prefs = profile.Preferences
			}
		}
	}

	respondJSON(w, http.StatusOK, services.Recommend(catalog.All(), services.RecommendQuery{
		Preferences: prefs,
		Category:    q.Get("category"),
		Sort:        sort,
	}))
}

func preferencesFromQuery(interests, budget, styles string) *models.UserPreferences {
	if interests == "" && budget == "" && styles == "" {
		return nil
	}
	return &models.UserPreferences{
		Interests:   splitList(interests),
		Budget:      models.BudgetTier(budget),
		TravelStyle: splitList(styles),
	}
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
