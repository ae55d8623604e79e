package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jason-s-yu/gamenight/internal/results"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

type incrementRequest struct {
	Kind  string `json:"kind"`
	Delta *int   `json:"delta"`
}

// IncrementResultHandler adjusts one tally; delta defaults to 1.
func IncrementResultHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req incrementRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad result payload", http.StatusBadRequest)
			return
		}
		kind, ok := results.ParseKind(req.Kind)
		if !ok {
			http.Error(w, "kind must be win or lose", http.StatusBadRequest)
			return
		}
		delta := 1
		if req.Delta != nil {
			delta = *req.Delta
		}
		wl, ok := tr.IncrementResult(writeContext(r), chi.URLParam(r, "gid"), chi.URLParam(r, "pid"), kind, delta)
		if !ok {
			http.Error(w, "game or player not found", http.StatusNotFound)
			return
		}
		writeJSON(w, r, http.StatusOK, wl)
	}
}

func ResetGameResultsHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tr.ResetGameResults(writeContext(r), chi.URLParam(r, "gid")) {
			http.Error(w, "no results for game", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func ResetResultsHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tr.ResetResults(writeContext(r))
		w.WriteHeader(http.StatusNoContent)
	}
}
