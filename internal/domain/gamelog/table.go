package gamelog

import (
	"sort"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrMissingDateColumn = crerr.New("game log has no GAME_DATE column")
	ErrRowTooLong        = crerr.New("game log row has more cells than the header")
)

// Table is tabular game data as it arrives from the API or a CSV file.
type Table struct {
	Header []string
	Rows   [][]string
}

var dateLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan 02, 2006",
	"01/02/2006",
}

// ParseGameDate accepts the date formats seen in stats API payloads and cached CSVs.
func ParseGameDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, crerr.Newf("unparsable game date %q", raw)
}

// FromTable parses GAME_DATE on every row and orders the rows ascending by date.
// Rows with equal dates keep their input order. Duplicate rows are kept. Short rows
// are padded with empty cells; rows longer than the header are rejected.
func FromTable(t Table) (GameLog, error) {
	header := make([]string, len(t.Header))
	index := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		header[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	datePos, ok := index[ColumnGameDate]
	if !ok {
		return GameLog{}, ErrMissingDateColumn
	}
	matchupPos, hasMatchup := index[ColumnMatchup]
	resultPos, hasResult := index[ColumnResult]

	records := make([]Record, 0, len(t.Rows))
	for rowNum, row := range t.Rows {
		if len(row) > len(header) {
			return GameLog{}, crerr.Wrapf(ErrRowTooLong, "row %d has %d cells, header has %d", rowNum+1, len(row), len(header))
		}
		cells := make([]string, len(header))
		copy(cells, row)

		date, err := ParseGameDate(cells[datePos])
		if err != nil {
			return GameLog{}, crerr.Wrapf(err, "row %d", rowNum+1)
		}
		cells[datePos] = date.Format(DateLayout)

		rec := Record{GameDate: date, cells: cells}
		if hasMatchup {
			rec.Matchup = cells[matchupPos]
		}
		if hasResult {
			rec.Result = Result(strings.TrimSpace(cells[resultPos]))
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].GameDate.Before(records[j].GameDate)
	})

	return GameLog{columns: header, index: index, records: records}, nil
}
