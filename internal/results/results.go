// Package results keeps the long-running win/loss tally per game and player.
package results

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/storage"
)

// SlotKey is the storage slot owned by the results matrix.
const SlotKey = "boardgame.results.v1"

// maxCount caps a single tally. Loaded values are capped the same way.
const maxCount = math.MaxInt32

// Kind selects which side of a tally an increment touches.
type Kind string

const (
	KindWin  Kind = "win"
	KindLose Kind = "lose"
)

// ParseKind accepts "win"/"w" and "lose"/"l", case-insensitively.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "w", "win":
		return KindWin, true
	case "l", "lose", "loss":
		return KindLose, true
	}
	return "", false
}

// Matrix is the results store. Zero tallies are never kept: a (0,0) leaf is
// deleted, as is a game with no leaves, and an empty matrix removes its slot.
type Matrix struct {
	mu    sync.Mutex
	slots storage.Slots
	log   logrus.FieldLogger
	data  models.ResultsMatrix
}

// New returns an empty matrix persisting into slots.
func New(slots storage.Slots, logger logrus.FieldLogger) *Matrix {
	return &Matrix{
		slots: slots,
		log:   logger.WithField("slot", SlotKey),
		data:  models.ResultsMatrix{},
	}
}

// Load restores the persisted matrix. Counts may be numbers or numeric
// strings; anything else, and any negative value, reads as zero.
func (m *Matrix) Load(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = models.ResultsMatrix{}
	v, ok, err := storage.Load(ctx, m.slots, SlotKey)
	if err != nil {
		m.log.WithError(err).Warn("discarding unreadable results")
		return
	}
	if !ok {
		return
	}
	games, isObject := v.(map[string]interface{})
	if !isObject {
		m.log.Warn("discarding results: payload is not an object")
		return
	}
	for gid, rawUsers := range games {
		users, ok := rawUsers.(map[string]interface{})
		if !ok {
			continue
		}
		for uid, rawLeaf := range users {
			leaf, ok := rawLeaf.(map[string]interface{})
			if !ok {
				continue
			}
			wl := models.WinLoss{Wins: count(leaf["w"]), Losses: count(leaf["l"])}
			if wl.IsZero() {
				continue
			}
			if m.data[gid] == nil {
				m.data[gid] = map[string]models.WinLoss{}
			}
			m.data[gid][uid] = wl
		}
	}
	m.log.Debugf("loaded results for %d games", len(m.data))
}

func count(v interface{}) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > maxCount {
		return maxCount
	}
	return int(math.Floor(f))
}

// Matrix returns a deep copy of the current tallies.
func (m *Matrix) Matrix() models.ResultsMatrix {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data.Clone()
}

// Get returns one tally; missing entries are zero.
func (m *Matrix) Get(gameID, participantID string) models.WinLoss {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[gameID][participantID]
}

// Increment adds delta to one side of a tally and returns the new tally. The
// result stays within [0, maxCount]. Empty ids are rejected.
func (m *Matrix) Increment(ctx context.Context, gameID, participantID string, kind Kind, delta int) (models.WinLoss, bool) {
	if gameID == "" || participantID == "" || (kind != KindWin && kind != KindLose) {
		return models.WinLoss{}, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wl := m.data[gameID][participantID]
	if kind == KindWin {
		wl.Wins = addCount(wl.Wins, delta)
	} else {
		wl.Losses = addCount(wl.Losses, delta)
	}

	next := m.data.Clone()
	if wl.IsZero() {
		delete(next[gameID], participantID)
		if len(next[gameID]) == 0 {
			delete(next, gameID)
		}
	} else {
		if next[gameID] == nil {
			next[gameID] = map[string]models.WinLoss{}
		}
		next[gameID][participantID] = wl
	}
	m.data = next
	m.persist(ctx)
	return wl, true
}

// ResetGame drops every tally of one game.
func (m *Matrix) ResetGame(ctx context.Context, gameID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[gameID]; !ok {
		return false
	}
	next := m.data.Clone()
	delete(next, gameID)
	m.data = next
	m.persist(ctx)
	return true
}

// ResetAll empties the matrix and removes its slot.
func (m *Matrix) ResetAll(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = models.ResultsMatrix{}
	m.persist(ctx)
}

// Sweep drops games not in gameIDs and, within the remaining games,
// participants not in participantIDs.
func (m *Matrix) Sweep(ctx context.Context, gameIDs, participantIDs []string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	liveGames := toSet(gameIDs)
	liveUsers := toSet(participantIDs)
	changed := false
	next := m.data.Clone()
	for gid, users := range next {
		if !liveGames[gid] {
			delete(next, gid)
			changed = true
			continue
		}
		for uid := range users {
			if !liveUsers[uid] {
				delete(users, uid)
				changed = true
			}
		}
		if len(users) == 0 {
			delete(next, gid)
		}
	}
	if changed {
		m.data = next
		m.persist(ctx)
	}
	return changed
}

// TotalsByUser sums each participant's tallies over all games.
func (m *Matrix) TotalsByUser() map[string]models.WinLoss {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]models.WinLoss)
	for _, users := range m.data {
		for uid, wl := range users {
			t := out[uid]
			t.Wins += wl.Wins
			t.Losses += wl.Losses
			out[uid] = t
		}
	}
	return out
}

// TotalsByGame sums each game's tallies over all participants.
func (m *Matrix) TotalsByGame() map[string]models.WinLoss {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]models.WinLoss, len(m.data))
	for gid, users := range m.data {
		var t models.WinLoss
		for _, wl := range users {
			t.Wins += wl.Wins
			t.Losses += wl.Losses
		}
		out[gid] = t
	}
	return out
}

func (m *Matrix) persist(ctx context.Context) {
	var err error
	if len(m.data) == 0 {
		err = m.slots.Delete(ctx, SlotKey)
	} else {
		err = storage.SaveJSON(ctx, m.slots, SlotKey, m.data)
	}
	if err != nil {
		m.log.WithError(err).Warn("failed to persist results")
	}
}

func addCount(v, delta int) int {
	if delta > 0 && v > maxCount-delta {
		return maxCount
	}
	return min(maxCount, max(0, v+delta))
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
