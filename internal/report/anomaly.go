package report

import "sort"

// Alert classifications for the latest period against the historical
// baseline.
const (
	AlertMissing = "Missing"
	AlertLow     = "Low"
	AlertNormal  = "Normal"
)

// lowWaterMark flags groups whose latest activity fell below half the
// historical baseline.
const lowWaterMark = 0.5

// DetectAnomalies appends the derived columns to a time-series aggregation.
// periodCols are the pivoted column labels; their lexical maximum is taken
// as the latest period, the rest as history. Callers guarantee labels sort
// chronologically (e.g. "2024-01"); the detector cannot verify that.
//
// With fewer than two period columns no baseline exists, so only Total is
// appended; Historical_Avg, Latest_Amount, Alert and Variance_% are absent
// entirely rather than null-filled. Existing period values are never
// mutated.
func DetectAnomalies(t Table, periodCols []string) Table {
	if t.Empty() {
		return t
	}
	idx := make([]int, 0, len(periodCols))
	for _, name := range periodCols {
		if i := t.ColumnIndex(name); i >= 0 {
			idx = append(idx, i)
		}
	}
	if len(idx) < 2 {
		return t.WithColumn(ColTotal, totals(t, idx))
	}

	sorted := append([]string(nil), periodCols...)
	sort.Strings(sorted)
	latestIdx := t.ColumnIndex(sorted[len(sorted)-1])
	historicalIdx := make([]int, 0, len(sorted)-1)
	for _, name := range sorted[:len(sorted)-1] {
		historicalIdx = append(historicalIdx, t.ColumnIndex(name))
	}

	n := len(t.Rows)
	avgs := make([]Value, n)
	latests := make([]Value, n)
	alerts := make([]Value, n)
	variances := make([]Value, n)
	for r := range t.Rows {
		avg := historicalAverage(t, r, historicalIdx)
		latest, _ := t.Cell(r, latestIdx).Float()
		avgs[r] = Number(avg)
		latests[r] = Number(latest)
		alerts[r] = String(classify(latest, avg))
		variances[r] = Number(variancePct(latest, avg))
	}

	out := t.WithColumn(ColHistoricalAvg, avgs)
	out = out.WithColumn(ColLatestAmount, latests)
	out = out.WithColumn(ColAlert, alerts)
	out = out.WithColumn(ColVariancePct, variances)
	return out.WithColumn(ColTotal, totals(out, idx))
}

// historicalAverage is the mean of the row's historical period values with
// exact zeros excluded. All-zero history yields 0, not an undefined mean.
func historicalAverage(t Table, row int, historicalIdx []int) float64 {
	var sum float64
	var count int
	for _, col := range historicalIdx {
		v, ok := t.Cell(row, col).Float()
		if !ok || v == 0 {
			continue
		}
		sum += v
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// classify applies the flag rules in priority order; the first match wins.
// No baseline means no anomaly can be asserted, so avg == 0 is Normal
// regardless of the latest value.
func classify(latest, avg float64) string {
	switch {
	case latest == 0 && avg > 0:
		return AlertMissing
	case latest > 0 && avg > 0 && latest < avg*lowWaterMark:
		return AlertLow
	default:
		return AlertNormal
	}
}

// variancePct is the percentage deviation of the latest amount from the
// baseline, rounded to one decimal. It is defined as 0 when the baseline is
// 0 to avoid dividing by zero.
func variancePct(latest, avg float64) float64 {
	if avg == 0 {
		return 0
	}
	return round1((latest - avg) / avg * 100)
}

// totals sums every period column per row, the latest included.
func totals(t Table, periodIdx []int) []Value {
	out := make([]Value, len(t.Rows))
	for r := range t.Rows {
		var sum float64
		for _, col := range periodIdx {
			if v, ok := t.Cell(r, col).Float(); ok {
				sum += v
			}
		}
		out[r] = Number(round2(sum))
	}
	return out
}
