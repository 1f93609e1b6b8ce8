package report

import "testing"

func TestNormalizeAmountsParsesSeparators(t *testing.T) {
	in := NewTable(ColVendor, ColAmount)
	_ = in.AppendRow(String("Acme"), String("1,234.50"))
	_ = in.AppendRow(String("Acme"), String("0"))
	_ = in.AppendRow(String("Acme"), String("abc"))
	_ = in.AppendRow(String("Acme"), Null())

	out := NormalizeAmounts(in)
	idx := out.ColumnIndex(ColAmountNumeric)
	if idx < 0 {
		t.Fatalf("expected %s column", ColAmountNumeric)
	}

	if v, ok := out.Cell(0, idx).Float(); !ok || v != 1234.50 {
		t.Fatalf("expected 1234.50, got %v (ok=%v)", v, ok)
	}
	// Zero is a parsed value, not a missing one.
	if v, ok := out.Cell(1, idx).Float(); !ok || v != 0 {
		t.Fatalf("expected parsed zero, got %v (ok=%v)", v, ok)
	}
	if !out.Cell(2, idx).IsNull() {
		t.Fatalf("expected unparsable amount to be null")
	}
	if !out.Cell(3, idx).IsNull() {
		t.Fatalf("expected null amount to stay null")
	}
}

func TestNormalizeAmountsDoesNotMutateInput(t *testing.T) {
	in := NewTable(ColAmount)
	_ = in.AppendRow(String("5"))

	_ = NormalizeAmounts(in)
	if len(in.Columns) != 1 {
		t.Fatalf("input table gained columns: %v", in.Columns)
	}
}

func TestNormalizeAmountsWithoutAmountColumn(t *testing.T) {
	in := NewTable(ColVendor)
	_ = in.AppendRow(String("Acme"))
	_ = in.AppendRow(String("Globex"))

	out := NormalizeAmounts(in)
	idx := out.ColumnIndex(ColAmountNumeric)
	for r := range out.Rows {
		if v, ok := out.Cell(r, idx).Float(); !ok || v != 0 {
			t.Fatalf("row %d: expected uniform zero, got %v (ok=%v)", r, v, ok)
		}
	}
}

func TestParseAmountNumericCell(t *testing.T) {
	if v, ok := ParseAmount(Number(42.5)); !ok || v != 42.5 {
		t.Fatalf("expected numeric passthrough, got %v (ok=%v)", v, ok)
	}
	if _, ok := ParseAmount(String("  ")); ok {
		t.Fatalf("expected blank text to be missing")
	}
}
