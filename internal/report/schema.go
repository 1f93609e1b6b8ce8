package report

// Canonical source column names. Qualified variants, when present, take
// precedence over the bare names.
const (
	ColVendor          = "Vendor"
	ColAccount         = "Account"
	ColDepartment      = "Department"
	ColDepartmentName  = "Department: Name"
	ColPeriod          = "Accounting Period"
	ColPeriodName      = "Accounting Period: Name"
	ColAmount          = "Amount"
	ColNumber          = "Number"
	ColName            = "Name"
	ColDescription     = "Description"
	ColAmountNumeric   = "Amount_Numeric"
	ColHistoricalAvg   = "Historical_Avg"
	ColLatestAmount    = "Latest_Amount"
	ColAlert           = "Alert"
	ColVariancePct     = "Variance_%"
	ColTotal           = "Total"
	ColAmountClean     = "Amount_Clean"
	ColAmountFormatted = "Amount_Formatted"
)

// Schema describes which optional columns an input table actually carries.
// It is computed once by DetectSchema and handed to the aggregation stages
// so column probing happens in exactly one place.
type Schema struct {
	// PeriodColumn is the resolved period column name, empty when absent.
	PeriodColumn string
	// DepartmentColumn is the resolved department column name, empty when absent.
	DepartmentColumn string
	// HasVendorAccount is true when both time-series grouping keys exist.
	HasVendorAccount bool
	// HasAccountDepartment is true when both summary grouping keys exist.
	HasAccountDepartment bool
	// HasAmount is true when the raw Amount column exists.
	HasAmount bool
	// HasNumber is true when the transaction identifier column exists.
	HasNumber bool
}

// DetectSchema probes the table for the column variants the pipeline cares
// about. Qualified names win over bare names when both are present.
func DetectSchema(t Table) Schema {
	sc := Schema{
		HasAmount: t.HasColumn(ColAmount),
		HasNumber: t.HasColumn(ColNumber),
	}
	switch {
	case t.HasColumn(ColPeriodName):
		sc.PeriodColumn = ColPeriodName
	case t.HasColumn(ColPeriod):
		sc.PeriodColumn = ColPeriod
	}
	switch {
	case t.HasColumn(ColDepartmentName):
		sc.DepartmentColumn = ColDepartmentName
	case t.HasColumn(ColDepartment):
		sc.DepartmentColumn = ColDepartment
	}
	hasAccount := t.HasColumn(ColAccount)
	sc.HasVendorAccount = hasAccount && t.HasColumn(ColVendor)
	sc.HasAccountDepartment = hasAccount && sc.DepartmentColumn != ""
	return sc
}

// CanAggregate reports whether the schema satisfies the grouping and period
// requirements of the given mode.
func (s Schema) CanAggregate(mode Mode) bool {
	if s.PeriodColumn == "" {
		return false
	}
	switch mode {
	case ModeTimeSeries:
		return s.HasVendorAccount
	case ModeSummary:
		return s.HasAccountDepartment
	default:
		return false
	}
}
