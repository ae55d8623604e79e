package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/middleware"
	"github.com/jason-s-yu/gamenight/internal/tracker"
)

// NewRouter mounts the JSON API and the state feed behind request logging,
// panic recovery and CORS for allowedOrigins.
func NewRouter(logger *logrus.Logger, tr *tracker.Tracker, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.LogMiddleware(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Heartbeat("/ping"))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/api/state", StateHandler(tr))

	r.Route("/api/games", func(r chi.Router) {
		r.Post("/", AddGameHandler(tr))
		r.Delete("/", ClearGamesHandler(tr))
		r.Post("/import", ImportGamesHandler(logger, tr))
		r.Patch("/{id}", UpdateGameHandler(tr))
		r.Delete("/{id}", RemoveGameHandler(tr))
	})

	r.Route("/api/players", func(r chi.Router) {
		r.Post("/", AddPlayerHandler(tr))
		r.Delete("/", ClearPlayersHandler(tr))
		r.Delete("/{id}", RemovePlayerHandler(tr))
	})

	r.Route("/api/board", func(r chi.Router) {
		r.Post("/reset", ResetBoardHandler(tr))
		r.Put("/rows", SetRowCountHandler(tr))
		r.Post("/rows", AddRowHandler(tr))
		r.Delete("/rows/last", RemoveLastRowHandler(tr))
		r.Route("/rows/{id}", func(r chi.Router) {
			r.Put("/game", SetRowGameHandler(tr))
			r.Put("/first", SetRowFirstPlayerHandler(tr))
			r.Post("/cells/{pid}/cycle", CycleCellHandler(tr))
			r.Put("/cells/{pid}", SetCellHandler(tr))
			r.Post("/reset", ResetRowHandler(tr))
			r.Post("/spin-game", SpinRowGameHandler(tr))
			r.Post("/spin-first", SpinRowFirstPlayerHandler(tr))
		})
	})

	r.Route("/api/results", func(r chi.Router) {
		r.Delete("/", ResetResultsHandler(tr))
		r.Delete("/{gid}", ResetGameResultsHandler(tr))
		r.Post("/{gid}/{pid}", IncrementResultHandler(tr))
	})

	r.Route("/api/selection/{scope}", func(r chi.Router) {
		r.Put("/", SelectAllHandler(tr))
		r.Get("/pool", PoolHandler(tr))
		r.Post("/{id}/toggle", ToggleSelectionHandler(tr))
	})
	r.Post("/api/draw/game", DrawGameHandler(tr))
	r.Post("/api/draw/first", DrawFirstPlayerHandler(tr))
	r.Post("/api/dice", RollDiceHandler(tr))

	r.Get("/ws", StateWSHandler(logger, tr))

	return r
}

// StateHandler returns the full snapshot.
func StateHandler(tr *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, tr.Snapshot())
	}
}
