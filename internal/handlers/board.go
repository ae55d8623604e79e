package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jason-s-yu/gamenight/internal/draw"
	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

type rowCountRequest struct {
	Count *int `json:"count"`
}

type rowGameRequest struct {
	GameID *string `json:"gameId"`
}

type rowFirstRequest struct {
	PlayerID *string `json:"playerId"`
}

type cellRequest struct {
	Value models.CellValue `json:"value"`
}

// SetRowCountHandler resizes the board; the count is clamped to [1, MAX_ROWS].
func SetRowCountHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rowCountRequest
		if err := decodeBody(r, &req); err != nil || req.Count == nil {
			http.Error(w, "count is required", http.StatusBadRequest)
			return
		}
		tr.SetRowCount(writeContext(r), *req.Count)
		writeJSON(w, r, http.StatusOK, tr.Snapshot().Rows)
	}
}

func AddRowHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tr.AddRow(writeContext(r)) {
			http.Error(w, "the board is at its row limit", http.StatusConflict)
			return
		}
		writeJSON(w, r, http.StatusCreated, tr.Snapshot().Rows)
	}
}

// RemoveLastRowHandler drops the tail row. The last remaining row is kept (409).
func RemoveLastRowHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tr.RemoveLastRow(writeContext(r)) {
			http.Error(w, "the board keeps at least one row", http.StatusConflict)
			return
		}
		writeJSON(w, r, http.StatusOK, tr.Snapshot().Rows)
	}
}

// SetRowGameHandler sets or (with null) unsets the row's game.
func SetRowGameHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rowGameRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad row payload", http.StatusBadRequest)
			return
		}
		gameID := ""
		if req.GameID != nil {
			gameID = *req.GameID
		}
		if !tr.SetRowGame(writeContext(r), chi.URLParam(r, "id"), gameID) {
			http.Error(w, "row or game not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SetRowFirstPlayerHandler sets or (with null) unsets the row's first player.
func SetRowFirstPlayerHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rowFirstRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad row payload", http.StatusBadRequest)
			return
		}
		playerID := ""
		if req.PlayerID != nil {
			playerID = *req.PlayerID
		}
		if !tr.SetRowFirstPlayer(writeContext(r), chi.URLParam(r, "id"), playerID) {
			http.Error(w, "row or player not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func CycleCellHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, ok := tr.CycleCell(writeContext(r), chi.URLParam(r, "id"), chi.URLParam(r, "pid"))
		if !ok {
			http.Error(w, "row or player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, r, http.StatusOK, cellRequest{Value: v})
	}
}

func SetCellHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req cellRequest
		if err := decodeBody(r, &req); err != nil || !req.Value.Valid() {
			http.Error(w, "value must be none, win or lose", http.StatusBadRequest)
			return
		}
		if !tr.SetCell(writeContext(r), chi.URLParam(r, "id"), chi.URLParam(r, "pid"), req.Value) {
			http.Error(w, "row or player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, r, http.StatusOK, req)
	}
}

func ResetRowHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tr.ResetRow(writeContext(r), chi.URLParam(r, "id")) {
			http.Error(w, "row not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ResetBoardHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tr.ResetBoard(writeContext(r))
		w.WriteHeader(http.StatusNoContent)
	}
}

// SpinRowGameHandler draws from the board selection (optionally filtered) and
// assigns the result to the row.
func SpinRowGameHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad filter payload", http.StatusBadRequest)
			return
		}
		g, err := tr.SpinRowGame(writeContext(r), chi.URLParam(r, "id"), req.filter())
		if err != nil {
			writeDrawError(w, err)
			return
		}
		writeJSON(w, r, http.StatusOK, g)
	}
}

func SpinRowFirstPlayerHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := tr.SpinRowFirstPlayer(writeContext(r), chi.URLParam(r, "id"))
		if err != nil {
			writeDrawError(w, err)
			return
		}
		writeJSON(w, r, http.StatusOK, p)
	}
}

func writeDrawError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrRowNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, draw.ErrEmptyPool):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
