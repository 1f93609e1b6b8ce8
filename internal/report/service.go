package report

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// AlertCounts tallies time-series rows per alert class.
type AlertCounts struct {
	Missing int `json:"missing"`
	Low     int `json:"low"`
	Normal  int `json:"normal"`
}

// Metrics summarizes the source table the way the original report header
// did: raw dimensions, the grand total of parseable amounts, and the alert
// tallies of the aggregation.
type Metrics struct {
	SourceRows    int         `json:"source_rows"`
	SourceColumns int         `json:"source_columns"`
	TotalAmount   float64     `json:"total_amount"`
	Alerts        AlertCounts `json:"alerts"`
}

// Result carries both derived views of one pipeline invocation. Either
// table may be empty, which signals "could not be produced" and is an
// informational state for the caller, never a failure.
type Result struct {
	Mode          Mode      `json:"mode"`
	Aggregation   Table     `json:"aggregation"`
	PeriodColumns []string  `json:"period_columns,omitempty"`
	Detail        Table     `json:"detail"`
	Metrics       Metrics   `json:"metrics"`
	BuiltAt       time.Time `json:"built_at"`
	Duration      string    `json:"duration"`
}

// Service runs the full pipeline over one in-memory table. It holds no
// state between invocations.
type Service struct {
	logger *slog.Logger
	clock  func() time.Time
}

// NewService constructs the pipeline service.
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Build normalizes the input once and derives the aggregation report and
// the detail report from it. The two branches are independent and run
// concurrently. Anticipated data conditions (missing columns, unparsable
// amounts, empty input) never surface as errors; only context cancellation
// does.
func (s *Service) Build(ctx context.Context, t Table, mode Mode) (*Result, error) {
	start := s.clock()
	if mode == "" {
		mode = ModeTimeSeries
	}
	schema := DetectSchema(t)
	normalized := NormalizeAmounts(t)

	result := &Result{Mode: mode}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		agg, periods := Aggregate(normalized, schema, mode)
		if mode == ModeTimeSeries {
			agg = DetectAnomalies(agg, periods)
		}
		result.Aggregation = agg
		result.PeriodColumns = periods
		return nil
	})
	g.Go(func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Detail = DetailReport(t)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Metrics = buildMetrics(t, normalized, result.Aggregation)
	result.BuiltAt = s.clock()
	result.Duration = result.BuiltAt.Sub(start).String()

	s.logger.Info("report built",
		slog.String("mode", string(mode)),
		slog.Int("source_rows", result.Metrics.SourceRows),
		slog.Int("aggregation_rows", len(result.Aggregation.Rows)),
		slog.Int("alerts_missing", result.Metrics.Alerts.Missing),
		slog.Int("alerts_low", result.Metrics.Alerts.Low),
	)
	return result, nil
}

// FilterAlerts keeps only the rows whose Alert column matches. Tables
// without an Alert column pass through untouched, mirroring how single
// period aggregations carry no alerts to filter.
func FilterAlerts(t Table, alert string) Table {
	alertIdx := t.ColumnIndex(ColAlert)
	if alertIdx < 0 || alert == "" {
		return t
	}
	out := Table{Columns: append([]string(nil), t.Columns...)}
	for r := range t.Rows {
		if t.Cell(r, alertIdx).Text() == alert {
			out.Rows = append(out.Rows, t.Rows[r])
		}
	}
	return out
}

func buildMetrics(source, normalized, aggregation Table) Metrics {
	m := Metrics{
		SourceRows:    len(source.Rows),
		SourceColumns: len(source.Columns),
	}
	amountIdx := normalized.ColumnIndex(ColAmountNumeric)
	for r := range normalized.Rows {
		if v, ok := normalized.Cell(r, amountIdx).Float(); ok {
			m.TotalAmount += v
		}
	}
	m.TotalAmount = round2(m.TotalAmount)

	alertIdx := aggregation.ColumnIndex(ColAlert)
	if alertIdx < 0 {
		return m
	}
	for r := range aggregation.Rows {
		switch aggregation.Cell(r, alertIdx).Text() {
		case AlertMissing:
			m.Alerts.Missing++
		case AlertLow:
			m.Alerts.Low++
		case AlertNormal:
			m.Alerts.Normal++
		}
	}
	return m
}
