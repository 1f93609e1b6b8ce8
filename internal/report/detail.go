package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// detailColumns is the fixed projection order of the detail report.
var detailColumns = []string{
	ColAccount,
	ColName,
	ColDescription,
	ColAmount,
	ColPeriodName,
	ColVendor,
}

var currencyPrinter = message.NewPrinter(language.English)

// DetailReport projects the descriptive columns that exist in the input
// and, when an Amount column is present, appends a re-parsed numeric amount
// plus a display-ready currency string. Inputs carrying none of the detail
// columns pass through unchanged; that fallback is deliberate, not an
// error.
//
// The numeric amount is re-derived from the raw text here rather than
// reusing the aggregation's normalized column, so the detail report stands
// alone on any input table.
func DetailReport(t Table) Table {
	if t.Empty() {
		return Table{}
	}
	available := make([]string, 0, len(detailColumns))
	for _, name := range detailColumns {
		if t.HasColumn(name) {
			available = append(available, name)
		}
	}
	if len(available) == 0 {
		return t
	}
	out := t.Select(available...)
	amountIdx := out.ColumnIndex(ColAmount)
	if amountIdx < 0 {
		return out
	}
	clean := make([]Value, len(out.Rows))
	formatted := make([]Value, len(out.Rows))
	for r := range out.Rows {
		if f, ok := ParseAmount(out.Cell(r, amountIdx)); ok {
			clean[r] = Number(f)
			formatted[r] = String(FormatCurrency(f))
		} else {
			clean[r] = Null()
			formatted[r] = String("$0.00")
		}
	}
	out = out.WithColumn(ColAmountClean, clean)
	return out.WithColumn(ColAmountFormatted, formatted)
}

// FormatCurrency renders a dollar amount with thousands separators and two
// decimal places, e.g. 1234.5 -> "$1,234.50".
func FormatCurrency(v float64) string {
	return currencyPrinter.Sprintf("$%.2f", v)
}
