package gamelog

import (
	"strconv"
	"strings"
	"time"
)

// Column names used by the stats API and the cached CSV files.
const (
	ColumnGameDate = "GAME_DATE"
	ColumnMatchup  = "MATCHUP"
	ColumnResult   = "WL"
	ColumnPoints   = "PTS"
	ColumnRebounds = "REB"
	ColumnFGPct    = "FG_PCT"
	ColumnFG3Pct   = "FG3_PCT"
)

// DateLayout is the normalised GAME_DATE text written to caches.
const DateLayout = "2006-01-02"

// Result is the W/L code of a game. Values other than W and L are kept as-is.
type Result string

const (
	ResultWin  Result = "W"
	ResultLoss Result = "L"
)

func (r Result) IsDecided() bool {
	return r == ResultWin || r == ResultLoss
}

// Record is one played game. Cells hold every column in header order, stat fields untouched.
type Record struct {
	GameDate time.Time
	Matchup  string
	Result   Result
	cells    []string
}

// GameLog is a team's games ascending by date. It is not mutated after construction.
type GameLog struct {
	columns []string
	index   map[string]int
	records []Record
}

func (g GameLog) Columns() []string {
	return append([]string(nil), g.columns...)
}

func (g GameLog) Len() int {
	return len(g.records)
}

func (g GameLog) Records() []Record {
	out := make([]Record, len(g.records))
	for i, rec := range g.records {
		out[i] = rec.clone()
	}
	return out
}

func (g GameLog) Record(i int) Record {
	return g.records[i].clone()
}

func (g GameLog) HasColumn(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Value returns the raw cell of record i for column name.
func (g GameLog) Value(i int, name string) (string, bool) {
	pos, ok := g.index[name]
	if !ok || i < 0 || i >= len(g.records) {
		return "", false
	}
	cells := g.records[i].cells
	if pos >= len(cells) {
		return "", false
	}
	return cells[pos], true
}

// Float parses the cell of record i for column name. Empty or non-numeric cells report false.
func (g GameLog) Float(i int, name string) (float64, bool) {
	raw, ok := g.Value(i, name)
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Table renders the log back into header + rows with GAME_DATE normalised.
func (g GameLog) Table() Table {
	rows := make([][]string, len(g.records))
	for i, rec := range g.records {
		rows[i] = append([]string(nil), rec.cells...)
	}
	return Table{Header: g.Columns(), Rows: rows}
}

// Tail returns a log holding the last n games.
func (g GameLog) Tail(n int) GameLog {
	if n <= 0 || n >= len(g.records) {
		return g
	}
	return GameLog{
		columns: g.columns,
		index:   g.index,
		records: g.records[len(g.records)-n:],
	}
}

func (r Record) Cells() []string {
	return append([]string(nil), r.cells...)
}

func (r Record) clone() Record {
	r.cells = append([]string(nil), r.cells...)
	return r
}
