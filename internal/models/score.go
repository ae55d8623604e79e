// internal/models/score.go
package models

// CellValue is the mark a participant has on one scoreboard row.
type CellValue string

const (
	CellNone CellValue = "none"
	CellWin  CellValue = "win"
	CellLose CellValue = "lose"
)

// Valid reports whether v is one of none/win/lose.
func (v CellValue) Valid() bool {
	return v == CellNone || v == CellWin || v == CellLose
}

// Next advances through none -> win -> lose -> none. Unknown values count as none.
func (v CellValue) Next() CellValue {
	switch v {
	case CellWin:
		return CellLose
	case CellLose:
		return CellNone
	default:
		return CellWin
	}
}

// ScoreRow is one played (or planned) match on the scoreboard.
// GameID and FirstPlayerID are weak references; nil means unset.
type ScoreRow struct {
	ID            string               `json:"id"`
	GameID        *string              `json:"gameId"`
	FirstPlayerID *string              `json:"firstPlayerId"`
	Cells         map[string]CellValue `json:"cells"`
}

// Clone returns a deep copy of the row.
func (r ScoreRow) Clone() ScoreRow {
	out := ScoreRow{ID: r.ID, Cells: make(map[string]CellValue, len(r.Cells))}
	if r.GameID != nil {
		g := *r.GameID
		out.GameID = &g
	}
	if r.FirstPlayerID != nil {
		p := *r.FirstPlayerID
		out.FirstPlayerID = &p
	}
	for k, v := range r.Cells {
		out.Cells[k] = v
	}
	return out
}

// WinLoss is a win/loss tally. The short JSON keys match the persisted results layout.
type WinLoss struct {
	Wins   int `json:"w"`
	Losses int `json:"l"`
}

// IsZero reports whether both counts are zero.
func (wl WinLoss) IsZero() bool {
	return wl.Wins == 0 && wl.Losses == 0
}

// ResultsMatrix maps game id -> participant id -> tally.
type ResultsMatrix map[string]map[string]WinLoss

// Clone returns a deep copy of the matrix.
func (m ResultsMatrix) Clone() ResultsMatrix {
	out := make(ResultsMatrix, len(m))
	for gid, byUser := range m {
		inner := make(map[string]WinLoss, len(byUser))
		for uid, wl := range byUser {
			inner[uid] = wl
		}
		out[gid] = inner
	}
	return out
}
