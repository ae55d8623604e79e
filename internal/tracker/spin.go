package tracker

import (
	"context"

	"github.com/jason-s-yu/gamenight/internal/draw"
	"github.com/jason-s-yu/gamenight/internal/models"
)

// ToggleSelection flips whether a game is in the given scope's pool.
func (t *Tracker) ToggleSelection(scope Scope, gameID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	sel, ok := t.selections[scope]
	if !ok || !sel.Toggle(gameID) {
		return false
	}
	t.notify()
	return true
}

// SelectAll enables or disables every game in the given scope.
func (t *Tracker) SelectAll(scope Scope, on bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	sel, ok := t.selections[scope]
	if !ok {
		return false
	}
	sel.SetAll(on)
	t.notify()
	return true
}

// Pool returns the games a spin in scope would draw from under f.
func (t *Tracker) Pool(scope Scope, f draw.Filter) []models.Game {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pool(scope, f)
}

func (t *Tracker) pool(scope Scope, f draw.Filter) []models.Game {
	var flags map[string]bool
	if sel, ok := t.selections[scope]; ok {
		flags = sel.Flags()
	}
	return draw.EligiblePool(t.games.Games(), f, flags)
}

// DrawGame spins the roulette: one game is picked from the filtered selection
// and then disabled so the next spin lands elsewhere.
func (t *Tracker) DrawGame(f draw.Filter) (models.Game, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	g, err := draw.PickRandom(t.rng, t.pool(ScopeRoulette, f))
	if err != nil {
		return models.Game{}, err
	}
	t.selections[ScopeRoulette].Set(g.ID, false)
	t.notify()
	t.log.WithField("game", g.Name).Debug("roulette picked a game")
	return g, nil
}

// DrawFirstPlayer picks a starting player. A non-empty ids restricts the pool
// to those participants.
func (t *Tracker) DrawFirstPlayer(ids []string) (models.Participant, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return draw.PickRandom(t.rng, t.playerPool(ids))
}

func (t *Tracker) playerPool(ids []string) []models.Participant {
	all := t.players.Participants()
	if len(ids) == 0 {
		return all
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	pool := make([]models.Participant, 0, len(all))
	for _, p := range all {
		if want[p.ID] {
			pool = append(pool, p)
		}
	}
	return pool
}

// RollDice rolls n six-sided dice, clamped to the configured limit.
func (t *Tracker) RollDice(n int) []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return draw.RollDice(t.rng, n, t.maxDice)
}

// SpinRowGame picks a game from the board pool and assigns it to the row in
// one mutation.
func (t *Tracker) SpinRowGame(ctx context.Context, rowID string, f draw.Filter) (models.Game, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.board.Row(rowID); !ok {
		return models.Game{}, ErrRowNotFound
	}
	g, err := draw.PickRandom(t.rng, t.pool(ScopeBoard, f))
	if err != nil {
		return models.Game{}, err
	}
	t.commit(ctx, t.board.SetRowGame(ctx, rowID, g.ID))
	return g, nil
}

// SpinRowFirstPlayer picks any participant as the row's starting player.
func (t *Tracker) SpinRowFirstPlayer(ctx context.Context, rowID string) (models.Participant, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.board.Row(rowID); !ok {
		return models.Participant{}, ErrRowNotFound
	}
	p, err := draw.PickRandom(t.rng, t.players.Participants())
	if err != nil {
		return models.Participant{}, err
	}
	t.commit(ctx, t.board.SetRowFirstPlayer(ctx, rowID, p.ID))
	return p, nil
}
