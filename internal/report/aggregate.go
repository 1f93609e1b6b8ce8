package report

import (
	"math"
	"sort"
	"strconv"
)

// Mode selects which aggregation the engine runs. The caller picks the mode
// explicitly; it is never inferred from whichever columns happen to exist.
type Mode string

const (
	// ModeTimeSeries pivots (Vendor, Account) against the period column.
	ModeTimeSeries Mode = "timeseries"
	// ModeSummary groups (Account, Department, period) with count aggregates.
	ModeSummary Mode = "summary"
)

// Summary-mode aggregate column names.
const (
	ColAmountSum = "Amount_Sum"
	ColRowCount  = "Row_Count"
	ColTxnCount  = "Txn_Count"
)

// Aggregate groups the normalized table according to the mode. The second
// return lists the pivoted period column labels of time-series output
// (lexically sorted); it is nil in summary mode.
//
// A schema that cannot satisfy the mode's grouping keys, or an empty input,
// yields an empty table and no error: callers surface that as an
// informational state rather than a failure.
func Aggregate(t Table, sc Schema, mode Mode) (Table, []string) {
	if t.Empty() || !sc.CanAggregate(mode) {
		return Table{}, nil
	}
	switch mode {
	case ModeTimeSeries:
		return aggregateTimeSeries(t, sc)
	case ModeSummary:
		return aggregateSummary(t, sc), nil
	default:
		return Table{}, nil
	}
}

func aggregateTimeSeries(t Table, sc Schema) (Table, []string) {
	vendorIdx := t.ColumnIndex(ColVendor)
	accountIdx := t.ColumnIndex(ColAccount)
	periodIdx := t.ColumnIndex(sc.PeriodColumn)
	amountIdx := t.ColumnIndex(ColAmountNumeric)

	type groupKey struct {
		vendor  string
		account string
	}
	sums := make(map[groupKey]map[string]float64)
	var periods []string
	seenPeriod := make(map[string]bool)

	for r := range t.Rows {
		key := groupKey{
			vendor:  cellKey(t.Cell(r, vendorIdx)),
			account: cellKey(t.Cell(r, accountIdx)),
		}
		period := cellKey(t.Cell(r, periodIdx))
		if !seenPeriod[period] {
			seenPeriod[period] = true
			periods = append(periods, period)
		}
		if sums[key] == nil {
			sums[key] = make(map[string]float64)
		}
		// Null amounts count as no observation: the group and period still
		// materialize, the sum is simply not advanced.
		if amt, ok := t.Cell(r, amountIdx).Float(); ok {
			sums[key][period] += amt
		}
	}

	sort.Strings(periods)
	keys := make([]groupKey, 0, len(sums))
	for key := range sums {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].vendor != keys[j].vendor {
			return keys[i].vendor < keys[j].vendor
		}
		return keys[i].account < keys[j].account
	})

	out := NewTable(append([]string{ColVendor, ColAccount}, periods...)...)
	for _, key := range keys {
		cells := make([]Value, 0, len(periods)+2)
		cells = append(cells, String(key.vendor), String(key.account))
		for _, period := range periods {
			// Absent combinations are a sum over the empty set, i.e. 0.
			cells = append(cells, Number(round2(sums[key][period])))
		}
		_ = out.AppendRow(cells...)
	}
	return out, periods
}

func aggregateSummary(t Table, sc Schema) Table {
	accountIdx := t.ColumnIndex(ColAccount)
	deptIdx := t.ColumnIndex(sc.DepartmentColumn)
	periodIdx := t.ColumnIndex(sc.PeriodColumn)
	amountIdx := t.ColumnIndex(ColAmountNumeric)
	numberIdx := -1
	if sc.HasNumber {
		numberIdx = t.ColumnIndex(ColNumber)
	}

	type groupKey struct {
		account string
		dept    string
		period  string
	}
	type bucket struct {
		sum     float64
		rows    int
		numbers map[string]bool
	}
	buckets := make(map[groupKey]*bucket)

	for r := range t.Rows {
		key := groupKey{
			account: cellKey(t.Cell(r, accountIdx)),
			dept:    cellKey(t.Cell(r, deptIdx)),
			period:  cellKey(t.Cell(r, periodIdx)),
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{numbers: make(map[string]bool)}
			buckets[key] = b
		}
		b.rows++
		if amt, ok := t.Cell(r, amountIdx).Float(); ok {
			b.sum += amt
		}
		if numberIdx >= 0 {
			if num := cellKey(t.Cell(r, numberIdx)); num != "" {
				b.numbers[num] = true
			}
		}
	}

	keys := make([]groupKey, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.account != b.account {
			return a.account < b.account
		}
		if a.dept != b.dept {
			return a.dept < b.dept
		}
		return a.period < b.period
	})

	out := NewTable(ColAccount, sc.DepartmentColumn, sc.PeriodColumn, ColAmountSum, ColRowCount, ColTxnCount)
	for _, key := range keys {
		b := buckets[key]
		_ = out.AppendRow(
			String(key.account),
			String(key.dept),
			String(key.period),
			Number(round2(b.sum)),
			Number(float64(b.rows)),
			Number(float64(len(b.numbers))),
		)
	}
	return out
}

// cellKey renders a cell as a grouping key. Numbers keep their shortest
// decimal form so numeric and textual sources group identically.
func cellKey(v Value) string {
	if f, ok := v.Float(); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return v.Text()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
