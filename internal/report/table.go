// Package report implements the journal-entry report pipeline: amount
// normalization, schema detection, aggregation, anomaly flagging, and the
// detail projection. All transformations are pure; every stage returns a
// new Table and never mutates its input.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ValueKind discriminates the cell variants of a Table.
type ValueKind uint8

const (
	// ValueNull marks a missing cell.
	ValueNull ValueKind = iota
	// ValueString marks a textual cell.
	ValueString
	// ValueNumber marks a numeric cell.
	ValueNumber
)

// Value is a single table cell: text, a number, or null.
type Value struct {
	kind ValueKind
	str  string
	num  float64
}

// Null returns the missing-value cell.
func Null() Value {
	return Value{kind: ValueNull}
}

// String wraps text into a cell.
func String(s string) Value {
	return Value{kind: ValueString, str: s}
}

// Number wraps a float into a cell.
func Number(f float64) Value {
	return Value{kind: ValueNumber, num: f}
}

// Kind reports the cell variant.
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the cell is missing.
func (v Value) IsNull() bool {
	return v.kind == ValueNull
}

// Text returns the textual content. Numbers are not stringified; callers
// that need a display form use the export layer.
func (v Value) Text() string {
	return v.str
}

// Float returns the numeric content and whether the cell holds a number.
func (v Value) Float() (float64, bool) {
	if v.kind != ValueNumber {
		return 0, false
	}
	return v.num, true
}

// MarshalJSON encodes null cells as JSON null, keeping string and numeric
// cells as their natural JSON forms.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueString:
		return json.Marshal(v.str)
	case ValueNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON restores a cell from its JSON form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch t := raw.(type) {
	case nil:
		*v = Null()
	case string:
		*v = String(t)
	case float64:
		*v = Number(t)
	default:
		return fmt.Errorf("report: unsupported cell type %T", raw)
	}
	return nil
}

// Table is an in-memory column-ordered table. Column presence is never
// guaranteed; consumers probe with ColumnIndex before reading.
type Table struct {
	Columns []string  `json:"columns"`
	Rows    [][]Value `json:"rows"`
}

// NewTable allocates an empty table with the given column names.
func NewTable(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

// Empty reports whether the table carries no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// ColumnIndex returns the position of the named column, or -1 when absent.
func (t Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Cell returns the value at (row, column index). Out-of-range reads yield
// null, matching the missing-value semantics of ragged sources.
func (t Table) Cell(row, col int) Value {
	if row < 0 || row >= len(t.Rows) {
		return Null()
	}
	cells := t.Rows[row]
	if col < 0 || col >= len(cells) {
		return Null()
	}
	return cells[col]
}

// AppendRow adds a row, padding or truncating to the column count.
func (t *Table) AppendRow(cells ...Value) error {
	if t == nil {
		return errors.New("report: nil table")
	}
	row := make([]Value, len(t.Columns))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = Null()
		}
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// WithColumn returns a copy of the table with one extra column appended.
// values shorter than the row count are padded with null.
func (t Table) WithColumn(name string, values []Value) Table {
	out := Table{
		Columns: append(append([]string(nil), t.Columns...), name),
		Rows:    make([][]Value, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make([]Value, 0, len(row)+1)
		cells = append(cells, row...)
		if i < len(values) {
			cells = append(cells, values[i])
		} else {
			cells = append(cells, Null())
		}
		out.Rows[i] = cells
	}
	return out
}

// Select returns a copy containing only the named columns, in the given
// order. Unknown names are skipped.
func (t Table) Select(names ...string) Table {
	idx := make([]int, 0, len(names))
	cols := make([]string, 0, len(names))
	for _, name := range names {
		if i := t.ColumnIndex(name); i >= 0 {
			idx = append(idx, i)
			cols = append(cols, name)
		}
	}
	out := Table{Columns: cols, Rows: make([][]Value, len(t.Rows))}
	for r := range t.Rows {
		cells := make([]Value, len(idx))
		for c, i := range idx {
			cells[c] = t.Cell(r, i)
		}
		out.Rows[r] = cells
	}
	return out
}
