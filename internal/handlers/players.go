package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jason-s-yu/gamenight/internal/tracker"
)

type playerRequest struct {
	Name string `json:"name"`
}

// AddPlayerHandler registers a participant. Blank or duplicate names are a 409.
func AddPlayerHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req playerRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad player payload", http.StatusBadRequest)
			return
		}
		p, ok := tr.AddPlayer(writeContext(r), req.Name)
		if !ok {
			http.Error(w, "player name is empty or already taken", http.StatusConflict)
			return
		}
		writeJSON(w, r, http.StatusCreated, p)
	}
}

func RemovePlayerHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tr.RemovePlayer(writeContext(r), chi.URLParam(r, "id")) {
			http.Error(w, "player not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ClearPlayersHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tr.ClearPlayers(writeContext(r))
		w.WriteHeader(http.StatusNoContent)
	}
}
