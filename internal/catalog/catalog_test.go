package catalog

import (
	"slices"
	"testing"

	"travel-discovery-backend/internal/models"
)

func ids(ds []models.Destination) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.ID
	}
	return out
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	if len(all) != 8 {
		t.Fatalf("len(All()) = %d, want 8", len(all))
	}
	all[0].Name = "changed"
	if d, _ := ByID("1"); d.Name != "Santorini" {
		t.Errorf("catalog mutated through All(): %q", d.Name)
	}
}

func TestTrending(t *testing.T) {
	if got, want := ids(Trending()), []string{"1", "2", "3", "4"}; !slices.Equal(got, want) {
		t.Errorf("Trending() = %v, want %v", got, want)
	}
}

func TestByID(t *testing.T) {
	d, ok := ByID("6")
	if !ok || d.Name != "Paris" {
		t.Errorf("ByID(6) = %q, %v", d.Name, ok)
	}
	if _, ok := ByID("99"); ok {
		t.Error("ByID(99) found a destination")
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		category string
		want     []string
	}{
		{"empty query matches all", "", "", []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{"all category", "", AllCategories, []string{"1", "2", "3", "4", "5", "6", "7", "8"}},
		{"by name case-insensitive", "KYO", "", []string{"2"}},
		{"by country", "usa", "", []string{"4"}},
		{"query and category", "i", "adventure", []string{"3", "5", "8"}},
		{"category only", "", "romantic", []string{"1", "6"}},
		{"no match", "atlantis", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(Search(tt.query, tt.category)); !slices.Equal(got, tt.want) {
				t.Errorf("Search(%q, %q) = %v, want %v", tt.query, tt.category, got, tt.want)
			}
		})
	}
}

func TestResolveKeepsCatalogOrder(t *testing.T) {
	got := ids(Resolve([]string{"6", "1", "99", "6"}))
	if want := []string{"1", "6"}; !slices.Equal(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
	if got := Resolve(nil); len(got) != 0 {
		t.Errorf("Resolve(nil) = %v, want empty", got)
	}
}
