// Package tracker composes the four collection stores into the game-night
// state the HTTP surface serves. Every operation runs under one lock: the
// store mutator is applied, then the reference sweeps, then subscribers are
// notified.
package tracker

import (
	"context"
	"errors"
	"math/rand"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/catalog"
	"github.com/jason-s-yu/gamenight/internal/draw"
	"github.com/jason-s-yu/gamenight/internal/results"
	"github.com/jason-s-yu/gamenight/internal/roster"
	"github.com/jason-s-yu/gamenight/internal/scoreboard"
	"github.com/jason-s-yu/gamenight/internal/storage"
)

// ErrRowNotFound is returned by spins aimed at a row that does not exist.
var ErrRowNotFound = errors.New("scoreboard row not found")

// Scope names one of the two independent game selections.
type Scope string

const (
	// ScopeRoulette is the selection behind the game roulette. A spin disables
	// the game it lands on.
	ScopeRoulette Scope = "roulette"
	// ScopeBoard is the selection behind per-row game spins on the scoreboard.
	ScopeBoard Scope = "board"
)

// Options tunes a Tracker.
type Options struct {
	ScoreboardRows int
	MaxDice        int
	// MaxRows bounds SetRowCount and AddRow; zero means scoreboard.MaxRows.
	MaxRows int
}

// Tracker owns the catalog, roster, scoreboard and results of one game night.
type Tracker struct {
	mu  sync.Mutex
	log logrus.FieldLogger
	rng *rand.Rand

	games   *catalog.Catalog
	players *roster.Roster
	board   *scoreboard.Board
	results *results.Matrix

	selections map[Scope]*draw.Selection
	maxDice    int
	maxRows    int

	subMu   sync.Mutex
	subs    map[int]chan struct{}
	nextSub int
}

// New wires the stores over slots. Call Load before serving.
func New(slots storage.Slots, logger logrus.FieldLogger, opts Options) *Tracker {
	if opts.MaxDice < 1 {
		opts.MaxDice = draw.MaxDice
	}
	if opts.MaxRows < 1 {
		opts.MaxRows = scoreboard.MaxRows
	}
	opts.ScoreboardRows = min(opts.ScoreboardRows, opts.MaxRows)
	return &Tracker{
		log:     logger.WithField("component", "tracker"),
		rng:     draw.NewRNG(),
		games:   catalog.New(slots, logger),
		players: roster.New(slots, logger),
		board:   scoreboard.NewBoard(slots, logger, opts.ScoreboardRows),
		results: results.New(slots, logger),
		selections: map[Scope]*draw.Selection{
			ScopeRoulette: draw.NewSelection(),
			ScopeBoard:    draw.NewSelection(),
		},
		maxDice: opts.MaxDice,
		maxRows: opts.MaxRows,
		subs:    map[int]chan struct{}{},
	}
}

// SetRNG replaces the random source, mainly for deterministic tests.
func (t *Tracker) SetRNG(rng *rand.Rand) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rng = rng
}

// Load restores all four stores and reconciles their cross-references.
func (t *Tracker) Load(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.games.Load(ctx)
	t.players.Load(ctx)
	t.board.Load(ctx)
	t.results.Load(ctx)
	t.reconcile(ctx)

	t.log.WithFields(logrus.Fields{
		"games":   t.games.Len(),
		"players": len(t.players.IDs()),
		"rows":    t.board.Len(),
	}).Info("game night state loaded")
}

// reconcile runs every reference sweep against the live id sets.
func (t *Tracker) reconcile(ctx context.Context) {
	gameIDs := t.games.IDs()
	playerIDs := t.players.IDs()

	t.board.Sweep(ctx, playerIDs)
	t.board.SweepGames(ctx, gameIDs)
	t.results.Sweep(ctx, gameIDs, playerIDs)
	for _, sel := range t.selections {
		sel.Sync(gameIDs)
	}
}

// Subscribe registers for change notifications. The channel receives a value
// after each mutation; bursts coalesce into one pending notification. Call the
// returned func to unsubscribe.
func (t *Tracker) Subscribe() (<-chan struct{}, func()) {
	t.subMu.Lock()
	defer t.subMu.Unlock()

	id := t.nextSub
	t.nextSub++
	ch := make(chan struct{}, 1)
	t.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.subMu.Lock()
			defer t.subMu.Unlock()
			delete(t.subs, id)
		})
	}
}

func (t *Tracker) notify() {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for _, ch := range t.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// commit finishes a mutation: sweeps, then notification.
func (t *Tracker) commit(ctx context.Context, changed bool) bool {
	if changed {
		t.reconcile(ctx)
		t.notify()
	}
	return changed
}

func (t *Tracker) isPlayer(id string) bool {
	_, ok := t.players.Get(id)
	return ok
}

func (t *Tracker) isGame(id string) bool {
	_, ok := t.games.Get(id)
	return ok
}
