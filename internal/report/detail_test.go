package report

import "testing"

func TestDetailReportProjection(t *testing.T) {
	in := NewTable(ColNumber, ColVendor, ColAccount, ColAmount, "Memo")
	_ = in.AppendRow(String("JE-1"), String("Acme"), String("6000"), String("1,234.5"), String("x"))

	out := DetailReport(in)

	want := []string{ColAccount, ColAmount, ColVendor, ColAmountClean, ColAmountFormatted}
	if len(out.Columns) != len(want) {
		t.Fatalf("unexpected columns: %v", out.Columns)
	}
	for i, col := range want {
		if out.Columns[i] != col {
			t.Fatalf("column %d: expected %q, got %q", i, col, out.Columns[i])
		}
	}
	if got := cellFloat(t, out, 0, ColAmountClean); got != 1234.5 {
		t.Fatalf("expected Amount_Clean 1234.5, got %v", got)
	}
	if got := cellText(t, out, 0, ColAmountFormatted); got != "$1,234.50" {
		t.Fatalf("expected $1,234.50, got %q", got)
	}
}

func TestDetailReportUnparsableAmount(t *testing.T) {
	in := NewTable(ColAccount, ColAmount)
	_ = in.AppendRow(String("6000"), String("n/a"))

	out := DetailReport(in)

	if !out.Cell(0, out.ColumnIndex(ColAmountClean)).IsNull() {
		t.Fatalf("expected null Amount_Clean")
	}
	if got := cellText(t, out, 0, ColAmountFormatted); got != "$0.00" {
		t.Fatalf("expected $0.00, got %q", got)
	}
}

func TestDetailReportNoAmountColumn(t *testing.T) {
	in := NewTable(ColAccount, ColVendor)
	_ = in.AppendRow(String("6000"), String("Acme"))

	out := DetailReport(in)
	if out.HasColumn(ColAmountClean) || out.HasColumn(ColAmountFormatted) {
		t.Fatalf("amount columns must be absent: %v", out.Columns)
	}
	if len(out.Columns) != 2 {
		t.Fatalf("unexpected columns: %v", out.Columns)
	}
}

func TestDetailReportPassThrough(t *testing.T) {
	in := NewTable("Foo", "Bar")
	_ = in.AppendRow(String("a"), String("b"))

	out := DetailReport(in)
	if len(out.Columns) != 2 || out.Columns[0] != "Foo" {
		t.Fatalf("expected pass-through of unknown columns, got %v", out.Columns)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{1000000, "$1,000,000.00"},
		{12.345, "$12.35"},
	}
	for _, tc := range cases {
		if got := FormatCurrency(tc.in); got != tc.want {
			t.Fatalf("FormatCurrency(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
