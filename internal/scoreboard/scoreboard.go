// Package scoreboard owns the ordered match rows of the evening and their
// per-player win/lose marks.
package scoreboard

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/jason-s-yu/gamenight/internal/models"
	"github.com/jason-s-yu/gamenight/internal/storage"
)

// SlotKey is the storage slot owned by the scoreboard.
const SlotKey = "boardgame.scoreboard.v1"

// MaxRows is the default upper bound on the row count.
const MaxRows = 100

// Board is the scoreboard store. It always holds at least one row and always
// persists the full row array, even when every row is blank.
type Board struct {
	mu          sync.Mutex
	slots       storage.Slots
	log         logrus.FieldLogger
	rows        []models.ScoreRow
	initialRows int

	// NewID generates row ids; tests may replace it.
	NewID func() string
}

// NewBoard returns a board that starts with initialRows blank rows (at least one)
// when nothing valid is persisted.
func NewBoard(slots storage.Slots, logger logrus.FieldLogger, initialRows int) *Board {
	if initialRows < 1 {
		initialRows = 1
	}
	return &Board{
		slots:       slots,
		log:         logger.WithField("slot", SlotKey),
		initialRows: initialRows,
		NewID:       models.NewID,
	}
}

// Load restores persisted rows. Unknown cell values become none, missing or
// repeated row ids are regenerated, and a non-object row loads as a blank row.
func (b *Board) Load(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rows = nil
	v, ok, err := storage.Load(ctx, b.slots, SlotKey)
	switch {
	case err != nil:
		b.log.WithError(err).Warn("discarding unreadable scoreboard")
	case ok:
		if items, isArray := v.([]interface{}); isArray {
			b.rows = b.normalizeRows(items)
		} else {
			b.log.Warn("discarding scoreboard: payload is not an array")
		}
	}

	if len(b.rows) == 0 {
		b.rows = make([]models.ScoreRow, b.initialRows)
		for i := range b.rows {
			b.rows[i] = b.blankRow(nil)
		}
		b.persist(ctx)
	}
	b.log.Debugf("loaded %d scoreboard rows", len(b.rows))
}

func (b *Board) normalizeRows(items []interface{}) []models.ScoreRow {
	rows := make([]models.ScoreRow, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		m, _ := item.(map[string]interface{})
		row := models.ScoreRow{Cells: map[string]models.CellValue{}}

		row.ID, _ = m["id"].(string)
		if row.ID == "" || seen[row.ID] {
			row.ID = b.NewID()
		}
		seen[row.ID] = true

		if gid, ok := m["gameId"].(string); ok && gid != "" {
			row.GameID = &gid
		}
		if pid, ok := m["firstPlayerId"].(string); ok && pid != "" {
			row.FirstPlayerID = &pid
		}
		if cells, ok := m["cells"].(map[string]interface{}); ok {
			for pid, raw := range cells {
				cv := models.CellNone
				if s, ok := raw.(string); ok && models.CellValue(s).Valid() {
					cv = models.CellValue(s)
				}
				row.Cells[pid] = cv
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Rows returns a deep copy of the rows in order.
func (b *Board) Rows() []models.ScoreRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.ScoreRow, len(b.rows))
	for i, r := range b.rows {
		out[i] = r.Clone()
	}
	return out
}

// Row returns a copy of the row with the given id.
func (b *Board) Row(id string) (models.ScoreRow, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i := b.indexOf(id); i >= 0 {
		return b.rows[i].Clone(), true
	}
	return models.ScoreRow{}, false
}

// Len returns the number of rows.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.rows)
}

// Sweep makes every row's cell keys exactly equal to participantIDs. Marks of
// remaining participants are kept, new participants get none, and a first
// player who left the roster is unset. It reports whether anything changed.
func (b *Board) Sweep(ctx context.Context, participantIDs []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := toSet(participantIDs)
	changed := false
	next := b.cloneRows()
	for i := range next {
		row := &next[i]
		for pid := range row.Cells {
			if !live[pid] {
				delete(row.Cells, pid)
				changed = true
			}
		}
		for _, pid := range participantIDs {
			if _, ok := row.Cells[pid]; !ok {
				row.Cells[pid] = models.CellNone
				changed = true
			}
		}
		if row.FirstPlayerID != nil && !live[*row.FirstPlayerID] {
			row.FirstPlayerID = nil
			changed = true
		}
	}
	if changed {
		b.rows = next
		b.persist(ctx)
	}
	return changed
}

// SweepGames unsets any row game that is no longer in gameIDs.
func (b *Board) SweepGames(ctx context.Context, gameIDs []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	live := toSet(gameIDs)
	changed := false
	next := b.cloneRows()
	for i := range next {
		if next[i].GameID != nil && !live[*next[i].GameID] {
			next[i].GameID = nil
			changed = true
		}
	}
	if changed {
		b.rows = next
		b.persist(ctx)
	}
	return changed
}

// SetRowCount grows or truncates the board to n rows, clamped to at least one.
// New rows copy the first row's participant keys with every cell none.
func (b *Board) SetRowCount(ctx context.Context, n int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 1 {
		n = 1
	}
	if n == len(b.rows) {
		return false
	}
	next := b.cloneRows()
	if n < len(next) {
		next = next[:n]
	} else {
		var template map[string]models.CellValue
		if len(next) > 0 {
			template = next[0].Cells
		}
		for len(next) < n {
			next = append(next, b.blankRow(template))
		}
	}
	b.rows = next
	b.persist(ctx)
	return true
}

// AddRow appends one blank row.
func (b *Board) AddRow(ctx context.Context) bool {
	return b.SetRowCount(ctx, b.Len()+1)
}

// RemoveLastRow drops the tail row unless it is the only one.
func (b *Board) RemoveLastRow(ctx context.Context) bool {
	return b.SetRowCount(ctx, b.Len()-1)
}

// SetRowGame assigns a game to a row. An empty gameID unsets it.
func (b *Board) SetRowGame(ctx context.Context, rowID, gameID string) bool {
	return b.mutateRow(ctx, rowID, func(r *models.ScoreRow) {
		r.GameID = optional(gameID)
	})
}

// SetRowFirstPlayer assigns the starting player of a row. An empty
// participantID unsets it.
func (b *Board) SetRowFirstPlayer(ctx context.Context, rowID, participantID string) bool {
	return b.mutateRow(ctx, rowID, func(r *models.ScoreRow) {
		r.FirstPlayerID = optional(participantID)
	})
}

// CycleCell advances a cell none -> win -> lose -> none and returns the new value.
// A missing cell counts as none.
func (b *Board) CycleCell(ctx context.Context, rowID, participantID string) (models.CellValue, bool) {
	var value models.CellValue
	ok := b.mutateRow(ctx, rowID, func(r *models.ScoreRow) {
		value = r.Cells[participantID].Next()
		r.Cells[participantID] = value
	})
	return value, ok
}

// SetCell stores value directly. Values outside none/win/lose are rejected.
func (b *Board) SetCell(ctx context.Context, rowID, participantID string, value models.CellValue) bool {
	if !value.Valid() {
		return false
	}
	return b.mutateRow(ctx, rowID, func(r *models.ScoreRow) {
		r.Cells[participantID] = value
	})
}

// ResetRow unsets the row's game and first player and marks every cell none.
func (b *Board) ResetRow(ctx context.Context, rowID string) bool {
	return b.mutateRow(ctx, rowID, resetRow)
}

// ResetAll resets every row, keeping the row count and participant keys.
func (b *Board) ResetAll(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	next := b.cloneRows()
	for i := range next {
		resetRow(&next[i])
	}
	b.rows = next
	b.persist(ctx)
}

// Totals counts win and lose cells per participant across all rows. Every
// participant with a cell in any row is present, even with zero marks.
func (b *Board) Totals() map[string]models.WinLoss {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Totals(b.rows)
}

// Totals is the pure aggregate behind Board.Totals.
func Totals(rows []models.ScoreRow) map[string]models.WinLoss {
	totals := make(map[string]models.WinLoss)
	for _, r := range rows {
		for pid, cv := range r.Cells {
			t := totals[pid]
			switch cv {
			case models.CellWin:
				t.Wins++
			case models.CellLose:
				t.Losses++
			}
			totals[pid] = t
		}
	}
	return totals
}

func (b *Board) mutateRow(ctx context.Context, rowID string, fn func(*models.ScoreRow)) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(rowID)
	if i < 0 {
		return false
	}
	next := make([]models.ScoreRow, len(b.rows))
	copy(next, b.rows)
	row := b.rows[i].Clone()
	fn(&row)
	next[i] = row
	b.rows = next
	b.persist(ctx)
	return true
}

func (b *Board) persist(ctx context.Context) {
	if err := storage.SaveJSON(ctx, b.slots, SlotKey, b.rows); err != nil {
		b.log.WithError(err).Warn("failed to persist scoreboard")
	}
}

func (b *Board) blankRow(template map[string]models.CellValue) models.ScoreRow {
	row := models.ScoreRow{ID: b.NewID(), Cells: make(map[string]models.CellValue, len(template))}
	for pid := range template {
		row.Cells[pid] = models.CellNone
	}
	return row
}

func (b *Board) cloneRows() []models.ScoreRow {
	out := make([]models.ScoreRow, len(b.rows))
	for i, r := range b.rows {
		out[i] = r.Clone()
	}
	return out
}

func (b *Board) indexOf(id string) int {
	for i, r := range b.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func resetRow(r *models.ScoreRow) {
	r.GameID = nil
	r.FirstPlayerID = nil
	for pid := range r.Cells {
		r.Cells[pid] = models.CellNone
	}
}

func optional(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
