package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/ledgerpulse/ledgerpulse/internal/audit"
	"github.com/ledgerpulse/ledgerpulse/internal/ingest"
	"github.com/ledgerpulse/ledgerpulse/internal/report"
)

// ReportBuildJob consumes staged uploads and runs the report pipeline.
type ReportBuildJob struct {
	Store    *report.Store
	Service  *report.Service
	Recorder *audit.Recorder
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewReportBuildJob initialises the report build handler.
func NewReportBuildJob(store *report.Store, service *report.Service, recorder *audit.Recorder, logger *slog.Logger) *ReportBuildJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportBuildJob{
		Store:    store,
		Service:  service,
		Recorder: recorder,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one report build task.
func (j *ReportBuildJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil || j.Service == nil {
		return errors.New("report build: handler not configured")
	}
	var payload ReportBuildPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	logger := j.Logger.With(slog.String("report_id", payload.ReportID))

	run, err := j.Store.Run(ctx, payload.ReportID)
	if err != nil {
		if errors.Is(err, report.ErrRunNotFound) {
			logger.Warn("run expired before build")
			return asynq.SkipRetry
		}
		return err
	}
	run.Status = report.StatusInProgress
	if err := j.Store.SaveRun(ctx, run); err != nil {
		return err
	}

	start := j.clock()
	raw, err := j.Store.Upload(ctx, payload.ReportID)
	if err != nil {
		if errors.Is(err, report.ErrUploadNotFound) {
			return j.fail(ctx, run, start, "staged upload expired", asynq.SkipRetry)
		}
		return err
	}

	table, err := ingest.ParseCSVBytes(raw)
	if err != nil {
		logger.Warn("unreadable upload", slog.Any("error", err))
		return j.fail(ctx, run, start, err.Error(), asynq.SkipRetry)
	}

	result, err := j.Service.Build(ctx, table, report.Mode(payload.Mode))
	if err != nil {
		// Build only fails on cancellation; leave the run pending for retry.
		return err
	}

	run.Status = report.StatusReady
	run.Error = ""
	run.Result = result
	if err := j.Store.SaveRun(ctx, run); err != nil {
		return err
	}
	_ = j.Store.DropUpload(ctx, payload.ReportID)

	j.record(ctx, run, result, start, "")
	logger.Info("report build complete",
		slog.Int("aggregation_rows", len(result.Aggregation.Rows)),
		slog.String("mode", string(result.Mode)),
	)
	return nil
}

func (j *ReportBuildJob) fail(ctx context.Context, run report.Run, start time.Time, reason string, ret error) error {
	run.Status = report.StatusFailed
	run.Error = reason
	run.Result = nil
	if err := j.Store.SaveRun(ctx, run); err != nil {
		return err
	}
	j.record(ctx, run, nil, start, reason)
	return ret
}

func (j *ReportBuildJob) record(ctx context.Context, run report.Run, result *report.Result, start time.Time, reason string) {
	entry := audit.RunEntry{
		ReportID: run.ID,
		Mode:     string(run.Mode),
		Status:   string(run.Status),
		Duration: j.clock().Sub(start),
		Error:    reason,
	}
	if result != nil {
		entry.SourceRows = result.Metrics.SourceRows
		entry.AggregationRows = len(result.Aggregation.Rows)
		entry.AlertsMissing = result.Metrics.Alerts.Missing
		entry.AlertsLow = result.Metrics.Alerts.Low
		entry.AlertsNormal = result.Metrics.Alerts.Normal
	}
	j.Recorder.RecordRun(ctx, entry)
}
