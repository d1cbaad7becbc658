// Package tabular reads and writes game logs as comma-separated files.
package tabular

import (
	"bytes"
	"encoding/csv"
	"io"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/team-gamelog/internal/domain/gamelog"
	"github.com/valyala/bytebufferpool"
)

var ErrEmpty = crerr.New("csv payload has no header row")

// EncodeGameLog renders the log as CSV with a header row.
func EncodeGameLog(log gamelog.GameLog) ([]byte, error) {
	return EncodeTable(log.Table())
}

func EncodeTable(t gamelog.Table) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := csv.NewWriter(buf)
	if err := w.Write(t.Header); err != nil {
		return nil, crerr.Wrap(err, "write csv header")
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, crerr.Wrap(err, "write csv rows")
	}

	return append([]byte(nil), buf.B...), nil
}

// DecodeTable reads a header row followed by data rows of any width. The game-log
// parser pads short rows and rejects long ones.
func DecodeTable(r io.Reader) (gamelog.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err == io.EOF {
		return gamelog.Table{}, ErrEmpty
	}
	if err != nil {
		return gamelog.Table{}, crerr.Wrap(err, "read csv header")
	}

	rows := make([][]string, 0, 128)
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return gamelog.Table{}, crerr.Wrapf(err, "read csv row %d", len(rows)+1)
		}
		rows = append(rows, rec)
	}

	return gamelog.Table{Header: header, Rows: rows}, nil
}

// DecodeGameLog parses CSV bytes and re-parses the GAME_DATE column.
func DecodeGameLog(raw []byte) (gamelog.GameLog, error) {
	table, err := DecodeTable(bytes.NewReader(raw))
	if err != nil {
		return gamelog.GameLog{}, err
	}
	return gamelog.FromTable(table)
}

// EncodeSummary renders metric,value rows with a leading blank header cell, matching
// the layout of the summary files consumed by the report and email jobs.
func EncodeSummary(s gamelog.Summary) ([]byte, error) {
	rows := s.Rows()
	table := gamelog.Table{Header: []string{"", "0"}, Rows: make([][]string, 0, len(rows))}
	for _, row := range rows {
		table.Rows = append(table.Rows, []string{row.Metric, row.Value})
	}
	return EncodeTable(table)
}
