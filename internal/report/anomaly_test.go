package report

import (
	"math"
	"testing"
)

func pivotRow(vendor, account string, amounts ...float64) []Value {
	cells := []Value{String(vendor), String(account)}
	for _, a := range amounts {
		cells = append(cells, Number(a))
	}
	return cells
}

func TestDetectAnomaliesMissingLatest(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, "2024-01", "2024-02")
	_ = in.AppendRow(pivotRow("VendorA", "Acct1", 1000, 0)...)

	out := DetectAnomalies(in, []string{"2024-01", "2024-02"})

	if got := cellFloat(t, out, 0, ColHistoricalAvg); got != 1000 {
		t.Fatalf("expected Historical_Avg 1000, got %v", got)
	}
	if got := cellFloat(t, out, 0, ColLatestAmount); got != 0 {
		t.Fatalf("expected Latest_Amount 0, got %v", got)
	}
	if got := cellText(t, out, 0, ColAlert); got != AlertMissing {
		t.Fatalf("expected %q, got %q", AlertMissing, got)
	}
	if got := cellFloat(t, out, 0, ColVariancePct); got != -100.0 {
		t.Fatalf("expected variance -100.0, got %v", got)
	}
	if got := cellFloat(t, out, 0, ColTotal); got != 1000 {
		t.Fatalf("expected Total 1000, got %v", got)
	}
	// Period values are appended to, never mutated.
	if got := cellFloat(t, out, 0, "2024-01"); got != 1000 {
		t.Fatalf("period column mutated: %v", got)
	}
}

func TestDetectAnomaliesLow(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, "2024-01", "2024-02", "2024-03")
	_ = in.AppendRow(pivotRow("VendorA", "Acct1", 400, 600, 200)...)

	out := DetectAnomalies(in, []string{"2024-01", "2024-02", "2024-03"})

	if got := cellFloat(t, out, 0, ColHistoricalAvg); got != 500 {
		t.Fatalf("expected Historical_Avg 500, got %v", got)
	}
	if got := cellText(t, out, 0, ColAlert); got != AlertLow {
		t.Fatalf("expected %q, got %q", AlertLow, got)
	}
	if got := cellFloat(t, out, 0, ColVariancePct); got != -60.0 {
		t.Fatalf("expected variance -60.0, got %v", got)
	}
	if got := cellFloat(t, out, 0, ColTotal); got != 1200 {
		t.Fatalf("expected Total 1200, got %v", got)
	}
}

func TestDetectAnomaliesHalfBaselineIsNotLow(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, "2024-01", "2024-02")
	_ = in.AppendRow(pivotRow("VendorA", "Acct1", 400, 200)...)

	out := DetectAnomalies(in, []string{"2024-01", "2024-02"})
	// Exactly half the baseline does not trip the flag.
	if got := cellText(t, out, 0, ColAlert); got != AlertNormal {
		t.Fatalf("expected %q, got %q", AlertNormal, got)
	}
}

func TestDetectAnomaliesNoBaseline(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, "2024-01", "2024-02")
	_ = in.AppendRow(pivotRow("VendorA", "Acct1", 0, 750)...)

	out := DetectAnomalies(in, []string{"2024-01", "2024-02"})

	if got := cellFloat(t, out, 0, ColHistoricalAvg); got != 0 {
		t.Fatalf("all-zero history must average to 0, got %v", got)
	}
	if got := cellText(t, out, 0, ColAlert); got != AlertNormal {
		t.Fatalf("no baseline means %q, got %q", AlertNormal, got)
	}
	if got := cellFloat(t, out, 0, ColVariancePct); got != 0 {
		t.Fatalf("no baseline means variance 0, got %v", got)
	}
}

func TestHistoricalAverageExcludesZeros(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, "2024-01", "2024-02", "2024-03", "2024-04")
	_ = in.AppendRow(pivotRow("VendorA", "Acct1", 100, 0, 300, 150)...)

	out := DetectAnomalies(in, []string{"2024-01", "2024-02", "2024-03", "2024-04"})
	// Mean of {100, 300}; the zero period is excluded, not averaged in.
	if got := cellFloat(t, out, 0, ColHistoricalAvg); got != 200 {
		t.Fatalf("expected Historical_Avg 200, got %v", got)
	}
}

func TestDetectAnomaliesSinglePeriod(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, "2024-01")
	_ = in.AppendRow(pivotRow("VendorA", "Acct1", 320.5)...)

	out := DetectAnomalies(in, []string{"2024-01"})

	for _, col := range []string{ColHistoricalAvg, ColLatestAmount, ColAlert, ColVariancePct} {
		if out.HasColumn(col) {
			t.Fatalf("column %q must be absent with a single period", col)
		}
	}
	if got := cellFloat(t, out, 0, ColTotal); got != 320.5 {
		t.Fatalf("expected Total 320.5, got %v", got)
	}
}

func TestTotalEqualsPeriodSum(t *testing.T) {
	periods := []string{"2024-01", "2024-02", "2024-03"}
	in := NewTable(append([]string{ColVendor, ColAccount}, periods...)...)
	_ = in.AppendRow(pivotRow("A", "1", 10.10, 20.20, 30.30)...)
	_ = in.AppendRow(pivotRow("B", "2", 0, 5.55, 0)...)

	out := DetectAnomalies(in, periods)
	for r := range out.Rows {
		var sum float64
		for _, p := range periods {
			sum += cellFloat(t, out, r, p)
		}
		if got := cellFloat(t, out, r, ColTotal); math.Abs(got-sum) > 1e-9 {
			t.Fatalf("row %d: Total %v != period sum %v", r, got, sum)
		}
	}
}
