package tracker

import (
	"context"

	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/results"
)

// Games

func (t *Tracker) AddGame(ctx context.Context, name, genre string, weight models.Weight) (models.Game, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	g, ok := t.games.Add(ctx, name, genre, weight)
	t.commit(ctx, ok)
	return g, ok
}

func (t *Tracker) UpdateGame(ctx context.Context, id string, patch models.GamePatch) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.games.Update(ctx, id, patch))
}

// RemoveGame deletes a game and clears every reference to it.
func (t *Tracker) RemoveGame(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.games.Remove(ctx, id))
}

func (t *Tracker) ClearGames(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.games.Clear(ctx)
	t.commit(ctx, true)
}

func (t *Tracker) ImportGames(ctx context.Context, data []byte, replace bool) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.games.Import(ctx, data, replace)
	if err != nil {
		return 0, err
	}
	t.commit(ctx, true)
	return n, nil
}

// Players

func (t *Tracker) AddPlayer(ctx context.Context, name string) (models.Participant, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.players.Add(ctx, name)
	t.commit(ctx, ok)
	return p, ok
}

// RemovePlayer deletes a participant, their scoreboard cells and their results.
func (t *Tracker) RemovePlayer(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.players.Remove(ctx, id))
}

func (t *Tracker) ClearPlayers(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.players.Clear(ctx)
	t.commit(ctx, true)
}

// Scoreboard

// SetRowCount resizes the board to n rows, clamped to [1, MaxRows].
func (t *Tracker) SetRowCount(ctx context.Context, n int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.board.SetRowCount(ctx, min(n, t.maxRows)))
}

// AddRow appends a row unless the board is already at MaxRows.
func (t *Tracker) AddRow(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.board.Len() >= t.maxRows {
		return false
	}
	return t.commit(ctx, t.board.AddRow(ctx))
}

func (t *Tracker) RemoveLastRow(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.board.RemoveLastRow(ctx))
}

// SetRowGame assigns a catalog game to a row; an empty gameID unsets it.
// Unknown games are rejected.
func (t *Tracker) SetRowGame(ctx context.Context, rowID, gameID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gameID != "" && !t.isGame(gameID) {
		return false
	}
	return t.commit(ctx, t.board.SetRowGame(ctx, rowID, gameID))
}

// SetRowFirstPlayer assigns a row's starting player; an empty id unsets it.
func (t *Tracker) SetRowFirstPlayer(ctx context.Context, rowID, participantID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if participantID != "" && !t.isPlayer(participantID) {
		return false
	}
	return t.commit(ctx, t.board.SetRowFirstPlayer(ctx, rowID, participantID))
}

func (t *Tracker) CycleCell(ctx context.Context, rowID, participantID string) (models.CellValue, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isPlayer(participantID) {
		return "", false
	}
	v, ok := t.board.CycleCell(ctx, rowID, participantID)
	t.commit(ctx, ok)
	return v, ok
}

func (t *Tracker) SetCell(ctx context.Context, rowID, participantID string, value models.CellValue) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isPlayer(participantID) {
		return false
	}
	return t.commit(ctx, t.board.SetCell(ctx, rowID, participantID, value))
}

func (t *Tracker) ResetRow(ctx context.Context, rowID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.board.ResetRow(ctx, rowID))
}

func (t *Tracker) ResetBoard(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.board.ResetAll(ctx)
	t.commit(ctx, true)
}

// Results

// IncrementResult adjusts a tally for a live game and participant.
func (t *Tracker) IncrementResult(ctx context.Context, gameID, participantID string, kind results.Kind, delta int) (models.WinLoss, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.isGame(gameID) || !t.isPlayer(participantID) {
		return models.WinLoss{}, false
	}
	wl, ok := t.results.Increment(ctx, gameID, participantID, kind, delta)
	t.commit(ctx, ok)
	return wl, ok
}

func (t *Tracker) ResetGameResults(ctx context.Context, gameID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.commit(ctx, t.results.ResetGame(ctx, gameID))
}

func (t *Tracker) ResetResults(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.results.ResetAll(ctx)
	t.commit(ctx, true)
}
