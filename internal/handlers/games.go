package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

type gameRequest struct {
	Name   string `json:"name"`
	Genre  string `json:"genre"`
	Weight string `json:"weight"`
}

type gamePatchRequest struct {
	Name   *string `json:"name"`
	Genre  *string `json:"genre"`
	Weight *string `json:"weight"`
}

// AddGameHandler creates a catalog game. Blank or duplicate names are a 409.
func AddGameHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gameRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad game payload", http.StatusBadRequest)
			return
		}
		g, ok := tr.AddGame(writeContext(r), req.Name, req.Genre, parseWeight(req.Weight))
		if !ok {
			http.Error(w, "game name is empty or already taken", http.StatusConflict)
			return
		}
		writeJSON(w, r, http.StatusCreated, g)
	}
}

// UpdateGameHandler applies a partial update. An unknown weight keeps the old one.
func UpdateGameHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req gamePatchRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad game payload", http.StatusBadRequest)
			return
		}
		if _, ok := tr.Game(id); !ok {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		patch := models.GamePatch{Name: req.Name, Genre: req.Genre}
		if req.Weight != nil {
			if wt, ok := models.ParseWeight(*req.Weight); ok {
				patch.Weight = &wt
			}
		}
		if !tr.UpdateGame(writeContext(r), id, patch) {
			http.Error(w, "game name is empty or already taken", http.StatusConflict)
			return
		}
		g, _ := tr.Game(id)
		writeJSON(w, r, http.StatusOK, g)
	}
}

func RemoveGameHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tr.RemoveGame(writeContext(r), chi.URLParam(r, "id")) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearGamesHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tr.ClearGames(writeContext(r))
		w.WriteHeader(http.StatusNoContent)
	}
}

// ImportGamesHandler loads a JSON array of games; ?replace=true swaps the
// whole catalog, otherwise games are merged by name.
func ImportGamesHandler(logger *logrus.Logger, tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		replace, _ := strconv.ParseBool(r.URL.Query().Get("replace"))
		data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "failed to read import payload", http.StatusBadRequest)
			return
		}
		n, err := tr.ImportGames(writeContext(r), data, replace)
		if err != nil {
			logger.WithError(err).Warn("rejected game import")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]int{"applied": n})
	}
}
