package services

import (
	"slices"

	"travel-discovery-backend/internal/catalog"
	"travel-discovery-backend/internal/models"
)

// SortKey selects the ordering of recommendations
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortRating    SortKey = "rating"
	SortBudget    SortKey = "budget"
)

// Valid reports whether k is a known sort key
func (k SortKey) Valid() bool {
	switch k {
	case SortRelevance, SortRating, SortBudget:
		return true
	}
	return false
}

const (
	interestWeight    = 2
	budgetMatchWeight = 3
	styleWeight       = 1
)

// RecommendQuery holds the inputs of Recommend. A nil Preferences skips
// preference filtering; an empty Category means catalog.AllCategories.
type RecommendQuery struct {
	Preferences *models.UserPreferences
	Category    string
	Sort        SortKey
}

// Score is the additive relevance of d for prefs: two points per matching
// interest, three for the exact budget tier, one per matching travel style.
func Score(d models.Destination, prefs *models.UserPreferences) int {
	if prefs == nil {
		return 0
	}
	score := interestScore(d, prefs)
	if prefs.Budget != "" && d.Budget == prefs.Budget {
		score += budgetMatchWeight
	}
	score += overlap(d.TravelStyle, prefs.TravelStyle) * styleWeight
	return score
}

// interestScore is the relevance sort key. It leaves out the budget and
// travel-style terms of Score.
func interestScore(d models.Destination, prefs *models.UserPreferences) int {
	if prefs == nil {
		return 0
	}
	return overlap(d.Category, prefs.Interests) * interestWeight
}

// Recommend filters and orders dest for q. When nothing survives the
// filters the whole catalog is returned in its original order.
func Recommend(dest []models.Destination, q RecommendQuery) []models.Destination {
	filtered := slices.Clone(dest)

	if q.Preferences != nil {
		filtered = slices.DeleteFunc(filtered, func(d models.Destination) bool {
			return Score(d, q.Preferences) == 0
		})
		if q.Sort == SortRelevance {
			slices.SortStableFunc(filtered, func(a, b models.Destination) int {
				return interestScore(b, q.Preferences) - interestScore(a, q.Preferences)
			})
		}
	}

	if q.Category != "" && q.Category != catalog.AllCategories {
		filtered = slices.DeleteFunc(filtered, func(d models.Destination) bool {
			return !d.HasCategory(q.Category)
		})
	}

	switch q.Sort {
	case SortRating:
		slices.SortStableFunc(filtered, func(a, b models.Destination) int {
			switch {
			case a.AverageRating > b.AverageRating:
				return -1
			case a.AverageRating < b.AverageRating:
				return 1
			}
			return 0
		})
	case SortBudget:
		slices.SortStableFunc(filtered, func(a, b models.Destination) int {
			return a.Budget.Rank() - b.Budget.Rank()
		})
	}

	if len(filtered) == 0 {
		return slices.Clone(dest)
	}
	return filtered
}

func overlap(tags, wanted []string) int {
	if len(tags) == 0 || len(wanted) == 0 {
		return 0
	}
	n := 0
	for _, t := range tags {
		if slices.Contains(wanted, t) {
			n++
		}
	}
	return n
}
