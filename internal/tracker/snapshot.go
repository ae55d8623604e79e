package tracker

import (
	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/scoreboard"
)

// Snapshot is a consistent copy of every collection plus derived totals.
type Snapshot struct {
	Games         []models.Game             `json:"games"`
	Players       []models.Participant      `json:"players"`
	Rows          []models.ScoreRow         `json:"rows"`
	BoardTotals   map[string]models.WinLoss `json:"boardTotals"`
	Results       models.ResultsMatrix      `json:"results"`
	ResultsByUser map[string]models.WinLoss `json:"resultsByUser"`
	ResultsByGame map[string]models.WinLoss `json:"resultsByGame"`
	Selections    map[Scope]map[string]bool `json:"selections"`
}

// Snapshot reads every store under the tracker lock.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	rows := t.board.Rows()
	sels := make(map[Scope]map[string]bool, len(t.selections))
	for scope, sel := range t.selections {
		sels[scope] = sel.Flags()
	}
	return Snapshot{
		Games:         t.games.Games(),
		Players:       t.players.Participants(),
		Rows:          rows,
		BoardTotals:   scoreboard.Totals(rows),
		Results:       t.results.Matrix(),
		ResultsByUser: t.results.TotalsByUser(),
		ResultsByGame: t.results.TotalsByGame(),
		Selections:    sels,
	}
}

// Game looks up a catalog game by id.
func (t *Tracker) Game(id string) (models.Game, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.games.Get(id)
}

// HasRow reports whether the scoreboard has a row with the given id.
func (t *Tracker) HasRow(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.board.Row(id)
	return ok
}
