// Package reporthttp exposes the report pipeline over HTTP: CSV upload,
// run retrieval, and CSV download of the computed views.
package reporthttp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ledgerpulse/ledgerpulse/internal/audit"
	"github.com/ledgerpulse/ledgerpulse/internal/ingest"
	"github.com/ledgerpulse/ledgerpulse/internal/platform/httpx"
	"github.com/ledgerpulse/ledgerpulse/internal/report"
	"github.com/ledgerpulse/ledgerpulse/internal/report/export"
	"github.com/ledgerpulse/ledgerpulse/jobs"
)

// Enqueuer submits background build tasks.
type Enqueuer interface {
	EnqueueReportBuild(ctx context.Context, payload jobs.ReportBuildPayload) error
}

// Handler coordinates HTTP requests for report runs.
type Handler struct {
	logger         *slog.Logger
	service        *report.Service
	store          *report.Store
	enqueuer       Enqueuer
	recorder       *audit.Recorder
	validate       *validator.Validate
	maxUploadBytes int64
	inlineRowLimit int
}

// HandlerConfig groups the handler dependencies.
type HandlerConfig struct {
	Logger         *slog.Logger
	Service        *report.Service
	Store          *report.Store
	Enqueuer       Enqueuer
	Recorder       *audit.Recorder
	MaxUploadBytes int64
	InlineRowLimit int
}

// NewHandler constructs a Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        cfg.Service,
		store:          cfg.Store,
		enqueuer:       cfg.Enqueuer,
		recorder:       cfg.Recorder,
		validate:       validator.New(),
		maxUploadBytes: cfg.MaxUploadBytes,
		inlineRowLimit: cfg.InlineRowLimit,
	}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/reports", h.create)
	r.Get("/reports/{id}", h.get)
	r.Get("/reports/{id}/aggregation.csv", h.downloadAggregation)
	r.Get("/reports/{id}/detail.csv", h.downloadDetail)
	r.Get("/reports/runs/recent", h.recentRuns)
}

type uploadForm struct {
	Mode  string `validate:"omitempty,oneof=timeseries summary"`
	Async string `validate:"omitempty,oneof=true false"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.RespondError(w, fmt.Errorf("%w: upload exceeds %d bytes", httpx.ErrPayloadTooLarge, h.maxUploadBytes))
			return
		}
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnreadableInput, "malformed multipart body"))
		return
	}

	form := uploadForm{
		Mode:  r.FormValue("mode"),
		Async: r.FormValue("async"),
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
		return
	}
	mode := report.Mode(form.Mode)
	if mode == "" {
		mode = report.ModeTimeSeries
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: missing file field", httpx.ErrValidation))
		return
	}
	defer func() { _ = file.Close() }()

	raw, err := io.ReadAll(file)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnreadableInput, err.Error()))
		return
	}
	table, err := ingest.ParseCSVBytes(raw)
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrUnreadableInput, err.Error()))
		return
	}

	run := report.Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
	}
	async := form.Async == "true"
	if !async && h.enqueuer != nil && h.inlineRowLimit > 0 && len(table.Rows) > h.inlineRowLimit {
		// Oversized uploads always go through the queue.
		async = true
	}
	if async && h.enqueuer != nil {
		h.createAsync(ctx, w, run, raw)
		return
	}
	h.createInline(ctx, w, run, table)
}

func (h *Handler) createAsync(ctx context.Context, w http.ResponseWriter, run report.Run, raw []byte) {
	run.Status = report.StatusPending
	if err := h.store.StageUpload(ctx, run.ID, raw); err != nil {
		h.logger.Error("stage upload", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.SaveRun(ctx, run); err != nil {
		h.logger.Error("save run", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if err := h.enqueuer.EnqueueReportBuild(ctx, jobs.ReportBuildPayload{
		ReportID: run.ID,
		Mode:     string(run.Mode),
	}); err != nil {
		h.logger.Error("enqueue report build", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, run)
}

func (h *Handler) createInline(ctx context.Context, w http.ResponseWriter, run report.Run, table report.Table) {
	start := time.Now().UTC()
	result, err := h.service.Build(ctx, table, run.Mode)
	if err != nil {
		h.logger.Error("build report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	run.Status = report.StatusReady
	run.Result = result
	if err := h.store.SaveRun(ctx, run); err != nil {
		h.logger.Error("save run", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.recorder.RecordRun(ctx, audit.RunEntry{
		ReportID:        run.ID,
		Mode:            string(run.Mode),
		Status:          string(run.Status),
		SourceRows:      result.Metrics.SourceRows,
		AggregationRows: len(result.Aggregation.Rows),
		AlertsMissing:   result.Metrics.Alerts.Missing,
		AlertsLow:       result.Metrics.Alerts.Low,
		AlertsNormal:    result.Metrics.Alerts.Normal,
		Duration:        time.Now().UTC().Sub(start),
	})
	httpx.JSON(w, http.StatusCreated, run)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	run, err := h.loadRun(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if alert := r.URL.Query().Get("alert"); alert != "" && run.Result != nil {
		filtered := *run.Result
		filtered.Aggregation = report.FilterAlerts(run.Result.Aggregation, alert)
		run.Result = &filtered
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *Handler) downloadAggregation(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "aggregation", func(res *report.Result) report.Table {
		return res.Aggregation
	})
}

func (h *Handler) downloadDetail(w http.ResponseWriter, r *http.Request) {
	h.download(w, r, "detail", func(res *report.Result) report.Table {
		return res.Detail
	})
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request, name string, pick func(*report.Result) report.Table) {
	run, err := h.loadRun(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if run.Status != report.StatusReady || run.Result == nil {
		httpx.RespondError(w, fmt.Errorf("%w: run %s is %s", httpx.ErrNotFound, run.ID, run.Status))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s_%s.csv", name, run.ID))
	if err := export.WriteTable(w, name, run.Result.BuiltAt, pick(run.Result)); err != nil {
		h.logger.Error("write csv", slog.String("report_id", run.ID), slog.Any("error", err))
	}
}

func (h *Handler) recentRuns(w http.ResponseWriter, r *http.Request) {
	if !h.recorder.Enabled() {
		httpx.JSON(w, http.StatusOK, []audit.RunEntry{})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.recorder.RecentRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("recent runs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.RunEntry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}

func (h *Handler) loadRun(r *http.Request) (report.Run, error) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		return report.Run{}, fmt.Errorf("%w: malformed report id", httpx.ErrValidation)
	}
	run, err := h.store.Run(r.Context(), id)
	if errors.Is(err, report.ErrRunNotFound) {
		return report.Run{}, fmt.Errorf("%w: report %s", httpx.ErrNotFound, id)
	}
	return run, err
}
