package services

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"

	"travel-discovery-backend/internal/catalog"
	"travel-discovery-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// DateLayout is the calendar-date form of itinerary start and end dates
const DateLayout = "2006-01-02"

const (
	day                  = 24 * time.Hour
	draftLeadDays        = 7
	explorerTrips        = 5
	plannerSaved         = 10
	adventurerTravelDays = 30
)

// ItineraryService manages the itinerary, saved destinations and survey
// answers stored on the profile
type ItineraryService struct {
	profiles *ProfileAdapter
	now      func() time.Time
}

// NewItineraryService creates a new itinerary service
func NewItineraryService(profiles *ProfileAdapter) *ItineraryService {
	return &ItineraryService{profiles: profiles, now: time.Now}
}

// Draft is the prefilled add-to-itinerary form for a destination
type Draft struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Notes     string `json:"notes"`
}

// DefaultDraft starts a week from now and lasts the destination's estimated
// length
func DefaultDraft(dest models.Destination, now time.Time) Draft {
	return Draft{
		StartDate: now.Add(draftLeadDays * day).UTC().Format(DateLayout),
		EndDate:   now.Add(time.Duration(dest.EstimatedDays+draftLeadDays) * day).UTC().Format(DateLayout),
		Notes:     fmt.Sprintf("Exciting trip to %s!", dest.Name),
	}
}

// AddItineraryRequest holds the fields of a new itinerary item. Empty dates
// and notes take the draft defaults.
type AddItineraryRequest struct {
	DestinationID string  `json:"destinationId" validate:"required"`
	StartDate     string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Notes         *string `json:"notes"`
}

// ItineraryPatch lists item fields to overwrite
type ItineraryPatch struct {
	StartDate *string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Notes     *string `json:"notes"`
}

// ItineraryResult is the itinerary after a change. Advisory is set when the
// write failed; Items then holds the unsaved list.
type ItineraryResult struct {
	Items    []models.ItineraryItem `json:"items"`
	Advisory *Advisory              `json:"advisory,omitempty"`
}

// List returns the itinerary of the session
func (s *ItineraryService) List(token string) ([]models.ItineraryItem, error) {
	profile, err := s.loadedProfile(token)
	if err != nil {
		return nil, err
	}
	return profile.TravelHistory, nil
}

// Add appends a new item holding a snapshot of the destination
func (s *ItineraryService) Add(ctx context.Context, token string, req AddItineraryRequest) (*ItineraryResult, error) {
	profile, err := s.loadedProfile(token)
	if err != nil {
		return nil, err
	}
	dest, ok := catalog.ByID(req.DestinationID)
	if !ok {
		return nil, ErrDestinationNotFound
	}

	now := s.now()
	draft := DefaultDraft(dest, now)
	item := models.ItineraryItem{
		ID:          strconv.FormatInt(now.UnixMilli(), 10),
		Destination: dest,
		StartDate:   draft.StartDate,
		EndDate:     draft.EndDate,
		Notes:       draft.Notes,
	}
	if req.StartDate != "" {
		item.StartDate = req.StartDate
	}
	if req.EndDate != "" {
		item.EndDate = req.EndDate
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if err := validateDates(item.StartDate, item.EndDate); err != nil {
		return nil, err
	}

	items := append(slices.Clone(profile.TravelHistory), item)
	return s.save(ctx, token, items), nil
}

// Update patches the item with the given id
func (s *ItineraryService) Update(ctx context.Context, token, itemID string, patch ItineraryPatch) (*ItineraryResult, error) {
	profile, err := s.loadedProfile(token)
	if err != nil {
		return nil, err
	}

	items := slices.Clone(profile.TravelHistory)
	idx := slices.IndexFunc(items, func(it models.ItineraryItem) bool { return it.ID == itemID })
	if idx < 0 {
		return nil, ErrItineraryItemNotFound
	}
	item := items[idx]
	if patch.StartDate != nil {
		item.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		item.EndDate = *patch.EndDate
	}
	if patch.Notes != nil {
		item.Notes = *patch.Notes
	}
	if err := validateDates(item.StartDate, item.EndDate); err != nil {
		return nil, err
	}
	items[idx] = item

	return s.save(ctx, token, items), nil
}

// Remove drops the item with the given id. Unknown ids leave the list as is.
func (s *ItineraryService) Remove(ctx context.Context, token, itemID string) (*ItineraryResult, error) {
	profile, err := s.loadedProfile(token)
	if err != nil {
		return nil, err
	}
	items := slices.DeleteFunc(slices.Clone(profile.TravelHistory), func(it models.ItineraryItem) bool {
		return it.ID == itemID
	})
	return s.save(ctx, token, items), nil
}

// save writes the itinerary. Write failures are logged and reported through
// the advisory only; the caller keeps the new list.
func (s *ItineraryService) save(ctx context.Context, token string, items []models.ItineraryItem) *ItineraryResult {
	_, advisory, err := s.profiles.UpdateProfile(ctx, token, ProfileUpdate{TravelHistory: &items})
	if err != nil {
		log.Error().Err(err).Msg("Error updating itinerary")
	}
	return &ItineraryResult{Items: items, Advisory: advisory}
}

// ToggleSaved adds destinationID to the saved list, or removes it if present.
// Write errors are returned.
func (s *ItineraryService) ToggleSaved(ctx context.Context, token, destinationID string) (*models.UserProfile, *Advisory, error) {
	profile, err := s.loadedProfile(token)
	if err != nil {
		return nil, nil, err
	}
	if _, ok := catalog.ByID(destinationID); !ok {
		return nil, nil, ErrDestinationNotFound
	}

	saved := slices.Clone(profile.SavedDestinations)
	if profile.IsSaved(destinationID) {
		saved = slices.DeleteFunc(saved, func(id string) bool { return id == destinationID })
	} else {
		saved = append(saved, destinationID)
	}
	return s.profiles.UpdateProfile(ctx, token, ProfileUpdate{SavedDestinations: &saved})
}

// Saved resolves the saved destination ids against the catalog
func (s *ItineraryService) Saved(token string) ([]models.Destination, error) {
	profile, err := s.loadedProfile(token)
	if err != nil {
		return nil, err
	}
	return catalog.Resolve(profile.SavedDestinations), nil
}

// CompleteSurvey replaces the stored preferences. A failed write is logged
// and the preferences are still returned so recommendations can be shown.
func (s *ItineraryService) CompleteSurvey(ctx context.Context, token string, prefs models.UserPreferences) (*models.UserPreferences, *Advisory) {
	_, advisory, err := s.profiles.UpdateProfile(ctx, token, ProfileUpdate{Preferences: &prefs})
	if err != nil {
		log.Error().Err(err).Msg("Error saving preferences")
	}
	return &prefs, advisory
}

func (s *ItineraryService) loadedProfile(token string) (*models.UserProfile, error) {
	st := s.profiles.State(token)
	if st.Profile == nil {
		return nil, ErrNoSession
	}
	return st.Profile, nil
}

// Trips is an itinerary split at the current time
type Trips struct {
	Upcoming []models.ItineraryItem `json:"upcoming"`
	Past     []models.ItineraryItem `json:"past"`
}

// Split classifies items by start date: upcoming when it is not before now.
// Items with unparseable dates are left out.
func Split(items []models.ItineraryItem, now time.Time) Trips {
	trips := Trips{Upcoming: []models.ItineraryItem{}, Past: []models.ItineraryItem{}}
	for _, it := range items {
		start, err := time.Parse(DateLayout, it.StartDate)
		if err != nil {
			continue
		}
		if start.Before(now) {
			trips.Past = append(trips.Past, it)
		} else {
			trips.Upcoming = append(trips.Upcoming, it)
		}
	}
	return trips
}

// DurationDays is the whole number of days between the dates, rounded up,
// regardless of their order
func DurationDays(startDate, endDate string) (int, error) {
	start, end, err := parseRange(startDate, endDate)
	if err != nil {
		return 0, err
	}
	return int(math.Ceil(math.Abs(end.Sub(start).Hours()) / 24)), nil
}

// DaysUntil is the number of days from now until startDate, rounded up
func DaysUntil(startDate string, now time.Time) (int, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return 0, ErrInvalidDate
	}
	return int(math.Ceil(start.Sub(now).Hours() / 24)), nil
}

// Achievement is a profile badge
type Achievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Earned      bool   `json:"earned"`
}

// ProfileStats summarises a profile
type ProfileStats struct {
	DestinationsVisited int           `json:"destinationsVisited"`
	SavedDestinations   int           `json:"savedDestinations"`
	TotalDays           int           `json:"totalDays"`
	Achievements        []Achievement `json:"achievements"`
}

// Stats counts trips, saved destinations and travel days. Total days add up
// ceil(end-start) for every trip with valid dates.
func Stats(profile *models.UserProfile) ProfileStats {
	stats := ProfileStats{}
	if profile != nil {
		stats.DestinationsVisited = len(profile.TravelHistory)
		stats.SavedDestinations = len(profile.SavedDestinations)
		for _, trip := range profile.TravelHistory {
			start, end, err := parseRange(trip.StartDate, trip.EndDate)
			if err != nil {
				continue
			}
			stats.TotalDays += int(math.Ceil(end.Sub(start).Hours() / 24))
		}
	}
	stats.Achievements = []Achievement{
		{Name: "Explorer", Description: "Visited 5+ destinations", Earned: stats.DestinationsVisited >= explorerTrips},
		{Name: "Planner", Description: "Saved 10+ destinations", Earned: stats.SavedDestinations >= plannerSaved},
		{Name: "Adventurer", Description: "Traveled 30+ days", Earned: stats.TotalDays >= adventurerTravelDays},
		{Name: "Reviewer", Description: "Left 5+ reviews", Earned: false},
	}
	return stats
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, startDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	end, err := time.Parse(DateLayout, endDate)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDate
	}
	return start, end, nil
}

func validateDates(startDate, endDate string) error {
	_, _, err := parseRange(startDate, endDate)
	return err
}
