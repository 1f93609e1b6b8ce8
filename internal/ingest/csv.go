// Package ingest parses uploaded journal-entry files into the core table
// structure. It is a thin boundary layer: everything that reaches the
// report pipeline has already been materialized here.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/ledgerpulse/ledgerpulse/internal/report"
)

// ErrNoHeader occurs when the input carries no header row.
var ErrNoHeader = errors.New("ingest: input has no header row")

// ParseCSV reads an entire CSV document into a Table. The first record is
// the header; every cell is kept as text, with empty cells stored as null.
// The delimiter is auto-detected among comma, semicolon and tab.
//
// A malformed document is a hard failure: unlike missing columns or
// unparsable amounts, a broken file structure is not a data-level signal
// the pipeline can absorb.
func ParseCSV(r io.Reader) (report.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return report.Table{}, fmt.Errorf("ingest: read input: %w", err)
	}
	return ParseCSVBytes(raw)
}

// ParseCSVBytes parses an in-memory CSV document.
func ParseCSVBytes(raw []byte) (report.Table, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(raw)) == 0 {
		return report.Table{}, ErrNoHeader
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.Comma = detectDelimiter(raw)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return report.Table{}, ErrNoHeader
	}
	if err != nil {
		return report.Table{}, fmt.Errorf("ingest: read header: %w", err)
	}
	table := report.NewTable(header...)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return report.Table{}, fmt.Errorf("ingest: read row: %w", err)
		}
		cells := make([]report.Value, len(record))
		for i, field := range record {
			if field == "" {
				cells[i] = report.Null()
			} else {
				cells[i] = report.String(field)
			}
		}
		if err := table.AppendRow(cells...); err != nil {
			return report.Table{}, err
		}
	}
	return table, nil
}

// detectDelimiter picks the candidate separator that occurs most often in
// the first line. Comma wins ties.
func detectDelimiter(raw []byte) rune {
	line := raw
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		line = raw[:i]
	}
	best := ','
	bestCount := bytes.Count(line, []byte{','})
	for _, cand := range []byte{';', '\t'} {
		if n := bytes.Count(line, []byte{cand}); n > bestCount {
			best = rune(cand)
			bestCount = n
		}
	}
	return best
}
