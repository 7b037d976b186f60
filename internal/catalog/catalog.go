// Package catalog holds the static destination catalog.
package catalog

import (
	"strings"

	"travel-discovery-backend/internal/models"
)

// AllCategories is the category filter value that matches every destination
const AllCategories = "all"

const trendingCount = 4

var destinations = []models.Destination{
	{
		ID:              "1",
		Name:            "Santorini",
		Country:         "Greece",
		Description:     "A stunning Greek island known for its white-washed buildings, blue domes, and breathtaking sunsets over the Aegean Sea.",
		Image:           "https://images.pexels.com/photos/161901/santorini-oia-greece-island-161901.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"romantic", "culture", "relaxation"},
		Budget:          models.BudgetHigh,
		BestTimeToVisit: "April - October",
		Activities:      []string{"sunset viewing", "wine tasting", "beach relaxation", "photography"},
		Coordinates:     models.Coordinates{Lat: 36.3932, Lng: 25.4615},
		AverageRating:   4.8,
		ReviewCount:     1250,
		Highlights:      []string{"Oia Sunset", "Red Beach", "Ancient Akrotiri"},
		EstimatedDays:   4,
		TravelStyle:     []string{"romantic", "luxury", "couples"},
	},
	{
		ID:              "2",
		Name:            "Kyoto",
		Country:         "Japan",
		Description:     "Ancient capital of Japan featuring thousands of temples, traditional wooden houses, and beautiful gardens.",
		Image:           "https://images.pexels.com/photos/2070033/pexels-photo-2070033.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"culture", "history", "spiritual"},
		Budget:          models.BudgetMedium,
		BestTimeToVisit: "March - May, September - November",
		Activities:      []string{"temple visits", "tea ceremonies", "garden walks", "traditional dining"},
		Coordinates:     models.Coordinates{Lat: 35.0116, Lng: 135.7681},
		AverageRating:   4.7,
		ReviewCount:     980,
		Highlights:      []string{"Fushimi Inari Shrine", "Bamboo Grove", "Golden Pavilion"},
		EstimatedDays:   5,
		TravelStyle:     []string{"cultural", "solo", "spiritual"},
	},
	{
		ID:              "3",
		Name:            "Bali",
		Country:         "Indonesia",
		Description:     "Tropical paradise with stunning beaches, ancient temples, lush rice terraces, and vibrant culture.",
		Image:           "https://images.pexels.com/photos/2161449/pexels-photo-2161449.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"adventure", "relaxation", "culture"},
		Budget:          models.BudgetLow,
		BestTimeToVisit: "April - September",
		Activities:      []string{"surfing", "temple visits", "yoga retreats", "volcano hiking"},
		Coordinates:     models.Coordinates{Lat: -8.3405, Lng: 115.0920},
		AverageRating:   4.6,
		ReviewCount:     1500,
		Highlights:      []string{"Uluwatu Temple", "Rice Terraces", "Mount Batur"},
		EstimatedDays:   7,
		TravelStyle:     []string{"adventure", "budget", "spiritual"},
	},
	{
		ID:              "4",
		Name:            "New York City",
		Country:         "USA",
		Description:     "The city that never sleeps, offering world-class museums, Broadway shows, iconic landmarks, and diverse cuisine.",
		Image:           "https://images.pexels.com/photos/290386/pexels-photo-290386.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"urban", "culture", "entertainment"},
		Budget:          models.BudgetHigh,
		BestTimeToVisit: "April - June, September - November",
		Activities:      []string{"museum visits", "Broadway shows", "shopping", "dining"},
		Coordinates:     models.Coordinates{Lat: 40.7128, Lng: -74.0060},
		AverageRating:   4.5,
		ReviewCount:     2100,
		Highlights:      []string{"Central Park", "Statue of Liberty", "Times Square"},
		EstimatedDays:   6,
		TravelStyle:     []string{"urban", "luxury", "cultural"},
	},
	{
		ID:              "5",
		Name:            "Machu Picchu",
		Country:         "Peru",
		Description:     "Ancient Incan citadel set high in the Andes Mountains, offering breathtaking views and rich history.",
		Image:           "https://images.pexels.com/photos/259967/pexels-photo-259967.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"adventure", "history", "hiking"},
		Budget:          models.BudgetMedium,
		BestTimeToVisit: "May - September",
		Activities:      []string{"hiking", "archaeology tours", "photography", "cultural experiences"},
		Coordinates:     models.Coordinates{Lat: -13.1631, Lng: -72.5450},
		AverageRating:   4.9,
		ReviewCount:     850,
		Highlights:      []string{"Inca Trail", "Huayna Picchu", "Sacred Valley"},
		EstimatedDays:   4,
		TravelStyle:     []string{"adventure", "cultural", "hiking"},
	},
	{
		ID:              "6",
		Name:            "Paris",
		Country:         "France",
		Description:     "The City of Light, renowned for its art, fashion, gastronomy, and iconic landmarks like the Eiffel Tower.",
		Image:           "https://images.pexels.com/photos/338515/pexels-photo-338515.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"romantic", "culture", "art"},
		Budget:          models.BudgetHigh,
		BestTimeToVisit: "April - June, September - October",
		Activities:      []string{"museum visits", "café culture", "shopping", "architecture tours"},
		Coordinates:     models.Coordinates{Lat: 48.8566, Lng: 2.3522},
		AverageRating:   4.7,
		ReviewCount:     1800,
		Highlights:      []string{"Eiffel Tower", "Louvre Museum", "Notre-Dame"},
		EstimatedDays:   5,
		TravelStyle:     []string{"romantic", "luxury", "cultural"},
	},
	{
		ID:              "7",
		Name:            "Dubai",
		Country:         "UAE",
		Description:     "Modern metropolis known for luxury shopping, ultramodern architecture, and vibrant nightlife scene.",
		Image:           "https://images.pexels.com/photos/1707310/pexels-photo-1707310.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"luxury", "urban", "shopping"},
		Budget:          models.BudgetHigh,
		BestTimeToVisit: "November - March",
		Activities:      []string{"shopping", "desert safari", "luxury dining", "architecture tours"},
		Coordinates:     models.Coordinates{Lat: 25.2048, Lng: 55.2708},
		AverageRating:   4.4,
		ReviewCount:     1200,
		Highlights:      []string{"Burj Khalifa", "Dubai Mall", "Palm Jumeirah"},
		EstimatedDays:   4,
		TravelStyle:     []string{"luxury", "urban", "shopping"},
	},
	{
		ID:              "8",
		Name:            "Iceland",
		Country:         "Iceland",
		Description:     "Land of fire and ice, featuring dramatic landscapes, geysers, waterfalls, and the Northern Lights.",
		Image:           "https://images.pexels.com/photos/1000445/pexels-photo-1000445.jpeg?auto=compress&cs=tinysrgb&w=800",
		Category:        []string{"adventure", "nature", "photography"},
		Budget:          models.BudgetHigh,
		BestTimeToVisit: "June - August, September - March (Northern Lights)",
		Activities:      []string{"northern lights viewing", "glacier hiking", "hot springs", "photography"},
		Coordinates:     models.Coordinates{Lat: 64.9631, Lng: -19.0208},
		AverageRating:   4.8,
		ReviewCount:     750,
		Highlights:      []string{"Blue Lagoon", "Golden Circle", "Northern Lights"},
		EstimatedDays:   6,
		TravelStyle:     []string{"adventure", "nature", "photography"},
	},
}

// All returns a copy of the full catalog in catalog order
func All() []models.Destination {
	out := make([]models.Destination, len(destinations))
	copy(out, destinations)
	return out
}

// Trending returns the head of the catalog shown on the trending page
func Trending() []models.Destination {
	return All()[:trendingCount]
}

// ByID looks up a destination
func ByID(id string) (models.Destination, bool) {
	for _, d := range destinations {
		if d.ID == id {
			return d, true
		}
	}
	return models.Destination{}, false
}

// Search matches query against name or country, case-insensitively, and
// narrows to category unless it is empty or AllCategories.
func Search(query, category string) []models.Destination {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Destination, 0, len(destinations))
	for _, d := range destinations {
		matchesSearch := strings.Contains(strings.ToLower(d.Name), q) ||
			strings.Contains(strings.ToLower(d.Country), q)
		matchesCategory := category == "" || category == AllCategories || d.HasCategory(category)
		if matchesSearch && matchesCategory {
			out = append(out, d)
		}
	}
	return out
}

// Resolve returns the destinations whose ids appear in ids, in catalog order.
// Unknown ids are skipped.
func Resolve(ids []string) []models.Destination {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	out := make([]models.Destination, 0, len(ids))
	for _, d := range destinations {
		if _, ok := wanted[d.ID]; ok {
			out = append(out, d)
		}
	}
	return out
}
