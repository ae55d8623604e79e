package draw

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/gamenight/internal/models"
)

func seeded() *rand.Rand { return rand.New(rand.NewSource(42)) }

var testGames = []models.Game{
	{ID: "1", Name: "Catan", Genre: "Euro", Weight: models.WeightMedium},
	{ID: "2", Name: "Azul", Genre: "Abstract", Weight: models.WeightLight},
	{ID: "3", Name: "Brass", Genre: "Economic euro", Weight: models.WeightHeavy},
	{ID: "4", Name: "Hanabi", Genre: "Co-op", Weight: models.WeightLight},
}

func TestPickRandom(t *testing.T) {
	_, err := PickRandom[string](seeded(), nil)
	assert.ErrorIs(t, err, ErrEmptyPool)

	pool := []string{"a", "b", "c"}
	rng := seeded()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		v, err := PickRandom(rng, pool)
		require.NoError(t, err)
		require.Contains(t, pool, v)
		seen[v] = true
	}
	assert.Len(t, seen, 3, "every element is reachable")
}

func TestFilter(t *testing.T) {
	assert.Len(t, Filter{}.Apply(testGames), 4)

	light := Filter{Weights: []models.Weight{models.WeightLight}}.Apply(testGames)
	assert.Equal(t, []models.Game{testGames[1], testGames[3]}, light)

	euro := Filter{Query: " EURO "}.Apply(testGames)
	assert.Equal(t, []models.Game{testGames[0], testGames[2]}, euro)

	both := Filter{Weights: []models.Weight{models.WeightHeavy}, Query: "euro"}.Apply(testGames)
	assert.Equal(t, []models.Game{testGames[2]}, both)
}

func TestEligiblePool(t *testing.T) {
	assert.Len(t, EligiblePool(testGames, Filter{}, nil), 4)

	selected := map[string]bool{"1": true, "2": false, "4": true}
	pool := EligiblePool(testGames, Filter{Weights: []models.Weight{models.WeightLight, models.WeightMedium}}, selected)
	assert.Equal(t, []models.Game{testGames[0], testGames[3]}, pool)

	assert.Empty(t, EligiblePool(testGames, Filter{}, map[string]bool{}))
}

func TestSortByWeight(t *testing.T) {
	asc := SortByWeight(testGames, Ascending)
	assert.Equal(t, []string{"2", "4", "1", "3"}, ids(asc))

	desc := SortByWeight(testGames, Descending)
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(desc))

	assert.Equal(t, "1", testGames[0].ID, "input is not reordered")
}

func ids(games []models.Game) []string {
	out := make([]string, len(games))
	for i, g := range games {
		out[i] = g.ID
	}
	return out
}

func TestSelection(t *testing.T) {
	s := NewSelection()
	assert.False(t, s.AllSelected())

	s.Sync([]string{"a", "b", "c"})
	assert.True(t, s.AllSelected())
	require.True(t, s.Toggle("b"))
	assert.False(t, s.Toggle("zzz"))
	assert.Equal(t, []string{"a", "c"}, s.Selected())

	s.Sync([]string{"b", "c", "d"})
	assert.Equal(t, map[string]bool{"b": false, "c": true, "d": true}, s.Flags())

	s.SetAll(true)
	assert.True(t, s.AllSelected())
	require.True(t, s.Set("d", false))
	assert.Equal(t, []string{"b", "c"}, s.Selected())
	s.SetAll(false)
	assert.Empty(t, s.Selected())
}

func TestRollDice(t *testing.T) {
	rng := seeded()
	assert.Len(t, RollDice(rng, 0, MaxDice), 1)
	assert.Len(t, RollDice(rng, -3, MaxDice), 1)
	assert.Len(t, RollDice(rng, 100, MaxDice), MaxDice)
	assert.Len(t, RollDice(rng, 100, 0), MaxDice)
	assert.Len(t, RollDice(rng, 8, 5), 5)

	roll := RollDice(rng, 20, MaxDice)
	require.Len(t, roll, 20)
	for _, v := range roll {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
	}
	assert.Equal(t, 12, Sum([]int{6, 5, 1}))
	assert.Equal(t, 0, Sum(nil))
}
