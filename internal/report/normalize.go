package report

import (
	"strconv"
	"strings"
)

// NormalizeAmounts returns a copy of the table with an Amount_Numeric
// column appended. Raw amounts have thousands separators stripped before
// parsing; values that still fail to parse become null so they cannot
// silently distort sums. Zero is a legitimate parsed value and stays
// distinguishable from null.
//
// When the table has no Amount column at all, every row normalizes to 0.
// That is a documented fallback for amount-less exports, not an error.
func NormalizeAmounts(t Table) Table {
	values := make([]Value, len(t.Rows))
	amountIdx := t.ColumnIndex(ColAmount)
	if amountIdx < 0 {
		for i := range values {
			values[i] = Number(0)
		}
		return t.WithColumn(ColAmountNumeric, values)
	}
	for i := range t.Rows {
		if f, ok := ParseAmount(t.Cell(i, amountIdx)); ok {
			values[i] = Number(f)
		} else {
			values[i] = Null()
		}
	}
	return t.WithColumn(ColAmountNumeric, values)
}

// ParseAmount converts a raw cell into a float. Numeric cells pass through;
// textual cells are parsed after separator stripping. The second return is
// false for null cells and unparsable text.
func ParseAmount(v Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	if v.IsNull() {
		return 0, false
	}
	raw := strings.TrimSpace(strings.ReplaceAll(v.Text(), ",", ""))
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
