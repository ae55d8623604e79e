package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jason-s-yu/gamenight/internal/draw"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

type filterRequest struct {
	Weights []string `json:"weights"`
	Query   string   `json:"query"`
}

func (f filterRequest) filter() draw.Filter {
	return draw.Filter{Weights: parseWeights(f.Weights), Query: f.Query}
}

type selectAllRequest struct {
	Enabled bool `json:"enabled"`
}

type drawFirstRequest struct {
	IDs []string `json:"ids"`
}

type diceRequest struct {
	Count int `json:"count"`
}

type diceResponse struct {
	Values []int `json:"values"`
	Sum    int   `json:"sum"`
}

func scopeOf(r *http.Request) (tracker.Scope, bool) {
	switch s := tracker.Scope(chi.URLParam(r, "scope")); s {
	case tracker.ScopeRoulette, tracker.ScopeBoard:
		return s, true
	}
	return "", false
}

// PoolHandler lists the games a spin would currently draw from. Filters come
// from ?weights=light,heavy&q=text, sorted with ?sort=asc|desc.
func PoolHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeOf(r)
		if !ok {
			http.Error(w, "unknown selection scope", http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		f := filterRequest{Weights: splitList(q.Get("weights")), Query: q.Get("q")}
		pool := tr.Pool(scope, f.filter())
		if order := draw.SortOrder(q.Get("sort")); order == draw.Ascending || order == draw.Descending {
			pool = draw.SortByWeight(pool, order)
		}
		writeJSON(w, r, http.StatusOK, pool)
	}
}

func ToggleSelectionHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeOf(r)
		if !ok || !tr.ToggleSelection(scope, chi.URLParam(r, "id")) {
			http.Error(w, "unknown selection scope or game", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func SelectAllHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, ok := scopeOf(r)
		if !ok {
			http.Error(w, "unknown selection scope", http.StatusNotFound)
			return
		}
		var req selectAllRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad selection payload", http.StatusBadRequest)
			return
		}
		tr.SelectAll(scope, req.Enabled)
		w.WriteHeader(http.StatusNoContent)
	}
}

// DrawGameHandler spins the game roulette.
func DrawGameHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad filter payload", http.StatusBadRequest)
			return
		}
		g, err := tr.DrawGame(req.filter())
		if err != nil {
			writeDrawError(w, err)
			return
		}
		writeJSON(w, r, http.StatusOK, g)
	}
}

// DrawFirstPlayerHandler picks a starting player, optionally among ids only.
func DrawFirstPlayerHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req drawFirstRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad draw payload", http.StatusBadRequest)
			return
		}
		p, err := tr.DrawFirstPlayer(req.IDs)
		if err != nil {
			writeDrawError(w, err)
			return
		}
		writeJSON(w, r, http.StatusOK, p)
	}
}

// RollDiceHandler rolls {count} d6, also accepted as ?count=.
func RollDiceHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := diceRequest{Count: 1}
		if c, err := strconv.Atoi(r.URL.Query().Get("count")); err == nil {
			req.Count = c
		}
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, "bad dice payload", http.StatusBadRequest)
			return
		}
		values := tr.RollDice(req.Count)
		writeJSON(w, r, http.StatusOK, diceResponse{Values: values, Sum: draw.Sum(values)})
	}
}
