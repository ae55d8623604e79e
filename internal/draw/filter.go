package draw

import (
	"sort"
	"strings"

	"github.com/jason-s-yu/gamenight/internal/models"
)

// Filter narrows the catalog. An empty Weights admits every weight; Query is
// matched case-insensitively against name and genre.
type Filter struct {
	Weights []models.Weight `json:"weights,omitempty"`
	Query   string          `json:"query,omitempty"`
}

// Match reports whether g passes the filter.
func (f Filter) Match(g models.Game) bool {
	if len(f.Weights) > 0 {
		found := false
		for _, w := range f.Weights {
			if w == g.Weight {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(g.Name), q) || strings.Contains(strings.ToLower(g.Genre), q)
}

// Apply returns the games passing the filter, in catalog order.
func (f Filter) Apply(games []models.Game) []models.Game {
	out := make([]models.Game, 0, len(games))
	for _, g := range games {
		if f.Match(g) {
			out = append(out, g)
		}
	}
	return out
}

// EligiblePool is the set a game spin draws from: games passing the filter
// whose id is enabled in selected. A nil selected admits every game.
func EligiblePool(games []models.Game, f Filter, selected map[string]bool) []models.Game {
	out := make([]models.Game, 0, len(games))
	for _, g := range f.Apply(games) {
		if selected == nil || selected[g.ID] {
			out = append(out, g)
		}
	}
	return out
}

// SortOrder is the direction of SortByWeight.
type SortOrder string

const (
	Ascending  SortOrder = "asc"
	Descending SortOrder = "desc"
)

// SortByWeight returns a copy of games ordered by weight, keeping catalog
// order within a weight class.
func SortByWeight(games []models.Game, order SortOrder) []models.Game {
	out := make([]models.Game, len(games))
	copy(out, games)
	sort.SliceStable(out, func(i, j int) bool {
		if order == Descending {
			return out[i].Weight.Rank() > out[j].Weight.Rank()
		}
		return out[i].Weight.Rank() < out[j].Weight.Rank()
	})
	return out
}
