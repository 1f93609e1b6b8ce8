package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceBuildTimeSeries(t *testing.T) {
	in := journalTable(
		entry("VendorA", "Acct1", "Ops", "2024-01", "T1", "1,000"),
		entry("VendorA", "Acct1", "Ops", "2024-02", "T2", "0"),
		entry("VendorB", "Acct2", "Ops", "2024-01", "T3", "600"),
		entry("VendorB", "Acct2", "Ops", "2024-02", "T4", "100"),
	)

	svc := NewService(nil)
	result, err := svc.Build(context.Background(), in, ModeTimeSeries)
	require.NoError(t, err)
	require.NotNil(t, result)

	agg := result.Aggregation
	require.Equal(t, 2, len(agg.Rows))
	assert.Equal(t, []string{"2024-01", "2024-02"}, result.PeriodColumns)

	// VendorA stopped spending entirely; VendorB dropped below half.
	assert.Equal(t, AlertMissing, cellText(t, agg, 0, ColAlert))
	assert.Equal(t, AlertLow, cellText(t, agg, 1, ColAlert))
	assert.Equal(t, 1, result.Metrics.Alerts.Missing)
	assert.Equal(t, 1, result.Metrics.Alerts.Low)
	assert.Equal(t, 0, result.Metrics.Alerts.Normal)

	assert.Equal(t, 4, result.Metrics.SourceRows)
	assert.InDelta(t, 1700, result.Metrics.TotalAmount, 1e-9)

	detail := result.Detail
	require.False(t, detail.Empty())
	assert.Equal(t, "$1,000.00", cellText(t, detail, 0, ColAmountFormatted))
	assert.False(t, result.BuiltAt.IsZero())
}

func TestServiceBuildSummaryMode(t *testing.T) {
	in := journalTable(
		entry("VendorA", "Acct1", "Ops", "2024-01", "JE-1", "100"),
		entry("VendorA", "Acct1", "Ops", "2024-01", "JE-2", "200"),
	)

	svc := NewService(nil)
	result, err := svc.Build(context.Background(), in, ModeSummary)
	require.NoError(t, err)

	assert.Nil(t, result.PeriodColumns)
	require.Equal(t, 1, len(result.Aggregation.Rows))
	assert.Equal(t, float64(300), cellFloat(t, result.Aggregation, 0, ColAmountSum))
	assert.False(t, result.Aggregation.HasColumn(ColAlert))
}

func TestServiceBuildEmptyInput(t *testing.T) {
	svc := NewService(nil)
	result, err := svc.Build(context.Background(), Table{}, ModeTimeSeries)
	require.NoError(t, err)

	assert.True(t, result.Aggregation.Empty())
	assert.True(t, result.Detail.Empty())
	assert.Equal(t, 0, result.Metrics.SourceRows)
}

func TestServiceBuildDefaultsMode(t *testing.T) {
	svc := NewService(nil)
	result, err := svc.Build(context.Background(), journalTable(
		entry("VendorA", "Acct1", "Ops", "2024-01", "T1", "5"),
	), "")
	require.NoError(t, err)
	assert.Equal(t, ModeTimeSeries, result.Mode)
}

func TestServiceBuildMissingAmountColumn(t *testing.T) {
	in := NewTable(ColVendor, ColAccount, ColPeriodName)
	_ = in.AppendRow(String("VendorA"), String("Acct1"), String("2024-01"))
	_ = in.AppendRow(String("VendorA"), String("Acct1"), String("2024-02"))

	svc := NewService(nil)
	result, err := svc.Build(context.Background(), in, ModeTimeSeries)
	require.NoError(t, err)

	// Amount-less inputs aggregate to all-zero sums, not an error.
	agg := result.Aggregation
	require.Equal(t, 1, len(agg.Rows))
	assert.Equal(t, float64(0), cellFloat(t, agg, 0, "2024-01"))
	assert.Equal(t, float64(0), cellFloat(t, agg, 0, ColTotal))
	assert.Equal(t, AlertNormal, cellText(t, agg, 0, ColAlert))
}

func TestFilterAlerts(t *testing.T) {
	in := NewTable(ColVendor, ColAlert)
	_ = in.AppendRow(String("A"), String(AlertMissing))
	_ = in.AppendRow(String("B"), String(AlertNormal))
	_ = in.AppendRow(String("C"), String(AlertMissing))

	out := FilterAlerts(in, AlertMissing)
	require.Equal(t, 2, len(out.Rows))

	// Tables without an Alert column pass through untouched.
	plain := NewTable(ColVendor)
	_ = plain.AppendRow(String("A"))
	assert.Equal(t, 1, len(FilterAlerts(plain, AlertMissing).Rows))
}
