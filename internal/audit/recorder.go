// Package audit persists report-run metadata to Postgres. Only run
// statistics are recorded, never the uploaded journal data, so nothing of
// the source survives outside the Redis TTL.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS report_runs (
    id               BIGSERIAL PRIMARY KEY,
    report_id        TEXT NOT NULL,
    mode             TEXT NOT NULL,
    status           TEXT NOT NULL,
    source_rows      INTEGER NOT NULL DEFAULT 0,
    aggregation_rows INTEGER NOT NULL DEFAULT 0,
    alerts_missing   INTEGER NOT NULL DEFAULT 0,
    alerts_low       INTEGER NOT NULL DEFAULT 0,
    alerts_normal    INTEGER NOT NULL DEFAULT 0,
    duration_ms      BIGINT NOT NULL DEFAULT 0,
    error            TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// RunEntry is one report-run audit record.
type RunEntry struct {
	ReportID        string
	Mode            string
	Status          string
	SourceRows      int
	AggregationRows int
	AlertsMissing   int
	AlertsLow       int
	AlertsNormal    int
	Duration        time.Duration
	Error           string
	CreatedAt       time.Time
}

// Recorder writes run entries. A nil Recorder (or one without a pool) is a
// no-op so the service runs without Postgres configured.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecorder constructs a Recorder instance.
func NewRecorder(pool *pgxpool.Pool, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{pool: pool, logger: logger}
}

// Enabled reports whether audit persistence is active.
func (r *Recorder) Enabled() bool {
	return r != nil && r.pool != nil
}

// EnsureSchema creates the audit table when missing.
func (r *Recorder) EnsureSchema(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	_, err := r.pool.Exec(ctx, schemaDDL)
	return err
}

// RecordRun persists one entry. Failures are logged and swallowed: audit
// must never take a report build down with it.
func (r *Recorder) RecordRun(ctx context.Context, entry RunEntry) {
	if !r.Enabled() {
		return
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report_runs (
			report_id, mode, status, source_rows, aggregation_rows,
			alerts_missing, alerts_low, alerts_normal, duration_ms, error
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		entry.ReportID, entry.Mode, entry.Status,
		entry.SourceRows, entry.AggregationRows,
		entry.AlertsMissing, entry.AlertsLow, entry.AlertsNormal,
		entry.Duration.Milliseconds(), entry.Error,
	)
	if err != nil {
		attrs := []any{slog.String("report_id", entry.ReportID), slog.Any("error", err)}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			attrs = append(attrs, slog.String("sqlstate", pgErr.Code))
		}
		r.logger.Warn("audit insert failed", attrs...)
	}
}

// RecentRuns lists the latest entries, newest first.
func (r *Recorder) RecentRuns(ctx context.Context, limit int) ([]RunEntry, error) {
	if !r.Enabled() {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT report_id, mode, status, source_rows, aggregation_rows,
		       alerts_missing, alerts_low, alerts_normal, duration_ms, error, created_at
		FROM report_runs
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var durationMs int64
		if err := rows.Scan(
			&e.ReportID, &e.Mode, &e.Status, &e.SourceRows, &e.AggregationRows,
			&e.AlertsMissing, &e.AlertsLow, &e.AlertsNormal, &durationMs, &e.Error, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return entries, nil
}
