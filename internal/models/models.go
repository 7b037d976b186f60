package models

import "time"

// BudgetTier is the price band of a destination or a user's budget choice
type BudgetTier string

const (
	BudgetLow    BudgetTier = "low"
	BudgetMedium BudgetTier = "medium"
	BudgetHigh   BudgetTier = "high"
)

// Rank orders tiers low < medium < high. Unknown tiers rank as zero.
func (b BudgetTier) Rank() int {
	switch b {
	case BudgetLow:
		return 1
	case BudgetMedium:
		return 2
	case BudgetHigh:
		return 3
	default:
		return 0
	}
}

// Valid reports whether b is one of the known tiers
func (b BudgetTier) Valid() bool {
	return b.Rank() > 0
}

// Coordinates is a geographic position in degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Destination represents a static catalog entry
type Destination struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Country         string      `json:"country"`
	Description     string      `json:"description"`
	Image           string      `json:"image"`
	Category        []string    `json:"category"`
	Budget          BudgetTier  `json:"budget"`
	BestTimeToVisit string      `json:"bestTimeToVisit"`
	Activities      []string    `json:"activities"`
	Coordinates     Coordinates `json:"coordinates"`
	AverageRating   float64     `json:"averageRating"`
	ReviewCount     int         `json:"reviewCount"`
	Highlights      []string    `json:"highlights"`
	EstimatedDays   int         `json:"estimatedDays"`
	TravelStyle     []string    `json:"travelStyle"`
}

// HasCategory reports whether the destination is tagged with category
func (d Destination) HasCategory(category string) bool {
	for _, c := range d.Category {
		if c == category {
			return true
		}
	}
	return false
}

// UserPreferences holds the answers of the preference survey.
// Season and GroupSize are collected but not used for scoring.
type UserPreferences struct {
	Interests   []string   `json:"interests" validate:"dive,required"`
	Budget      BudgetTier `json:"budget" validate:"omitempty,oneof=low medium high"`
	TravelStyle []string   `json:"travelStyle" validate:"dive,required"`
	Activities  []string   `json:"activities" validate:"dive,required"`
	Duration    string     `json:"duration" validate:"omitempty,oneof=weekend short medium long"`
	Season      string     `json:"season,omitempty"`
	GroupSize   string     `json:"groupSize,omitempty"`
}

// ItineraryItem is a planned or past trip. Destination is a snapshot taken
// when the item was created and is not refreshed from the catalog.
type ItineraryItem struct {
	ID          string      `json:"id"`
	Destination Destination `json:"destination"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
	Notes       string      `json:"notes"`
}

// UserProfile represents the profile document of an authenticated user
type UserProfile struct {
	UID                 string           `json:"uid"`
	Email               string           `json:"email"`
	DisplayName         string           `json:"displayName"`
	PhotoURL            *string          `json:"photoURL,omitempty"`
	Preferences         *UserPreferences `json:"preferences,omitempty"`
	TravelHistory       []ItineraryItem  `json:"travelHistory"`
	SavedDestinations   []string         `json:"savedDestinations"`
	Bio                 string           `json:"bio,omitempty"`
	FavoriteDestination string           `json:"favoriteDestination,omitempty"`
	TravelGoal          string           `json:"travelGoal,omitempty"`
	Revision            int64            `json:"revision,omitempty"`
	CreatedAt           time.Time        `json:"createdAt"`
}

// IsSaved reports whether destinationID is in the saved list
func (p *UserProfile) IsSaved(destinationID string) bool {
	if p == nil {
		return false
	}
	for _, id := range p.SavedDestinations {
		if id == destinationID {
			return true
		}
	}
	return false
}

// Identity represents an account known to the auth provider
type Identity struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	CreatedAt    time.Time `json:"createdAt"`
}
