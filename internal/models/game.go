// internal/models/game.go
package models

import "strings"

// Weight is a game's complexity/length tier. The persisted form is the Japanese label.
type Weight string

const (
	WeightLight  Weight = "軽量"
	WeightMedium Weight = "中量"
	WeightHeavy  Weight = "重量"
)

// Weights lists the valid weight classes from lightest to heaviest.
var Weights = []Weight{WeightLight, WeightMedium, WeightHeavy}

// Valid reports whether w is one of the three weight classes.
func (w Weight) Valid() bool {
	switch w {
	case WeightLight, WeightMedium, WeightHeavy:
		return true
	}
	return false
}

// Rank orders weights for sorting: Light=1, Medium=2, Heavy=3, anything else 0.
func (w Weight) Rank() int {
	switch w {
	case WeightLight:
		return 1
	case WeightMedium:
		return 2
	case WeightHeavy:
		return 3
	}
	return 0
}

// ParseWeight accepts either the persisted label or the English name
// ("light", "medium", "heavy", case-insensitive).
func ParseWeight(s string) (Weight, bool) {
	s = strings.TrimSpace(s)
	if w := Weight(s); w.Valid() {
		return w, true
	}
	switch strings.ToLower(s) {
	case "light":
		return WeightLight, true
	case "medium":
		return WeightMedium, true
	case "heavy":
		return WeightHeavy, true
	}
	return "", false
}

// Game is one entry of the game catalog.
type Game struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Genre  string `json:"genre"`
	Weight Weight `json:"weight"`
}

// GamePatch carries the fields of a catalog update. Nil fields keep their prior value.
type GamePatch struct {
	Name   *string `json:"name,omitempty"`
	Genre  *string `json:"genre,omitempty"`
	Weight *Weight `json:"weight,omitempty"`
}
