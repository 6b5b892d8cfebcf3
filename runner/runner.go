package runner

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/models"
	"github.com/coachscout/coachscout/orchestrator"
	"github.com/coachscout/coachscout/store"
	"github.com/coachscout/coachscout/tracker"
	"github.com/coachscout/coachscout/webhook"
)

// MethodHybrid labels runs that escalate from remote extraction to the
// stealth browser per target.
const MethodHybrid = "hybrid"

// Runner triggers and supervises batch scrape runs. At most one run
// executes at a time: the browser strategy holds a single shared browser
// and targets are paced sequentially for politeness, so concurrent
// batches would fight over both.
type Runner struct {
	cfg     *config.Config
	store   *store.Store
	orch    *orchestrator.Orchestrator
	running atomic.Bool
}

// New creates a Runner around a configured orchestrator and store.
func New(cfg *config.Config, st *store.Store, orch *orchestrator.Orchestrator) *Runner {
	return &Runner{cfg: cfg, store: st, orch: orch}
}

// StartRun resolves the requested targets, registers a new run, and kicks
// off the batch in the background. It returns immediately with the job ID.
func (r *Runner) StartRun(ctx context.Context, req models.StartRunRequest) (models.StartRunResponse, error) {
	targets, err := r.store.ListTargets(ctx, req.TargetIDs, req.Limit)
	if err != nil {
		return models.StartRunResponse{}, models.NewScrapeError(models.ErrCodeStoreFailure, "listing targets", err)
	}
	if len(targets) == 0 {
		return models.StartRunResponse{}, models.NewScrapeError(models.ErrCodeInvalidInput, "no targets match the request", nil)
	}

	if !r.running.CompareAndSwap(false, true) {
		return models.StartRunResponse{}, models.NewScrapeError(models.ErrCodeRateLimited, "a run is already in progress", nil)
	}

	runID := tracker.NewRunID()
	tr, err := tracker.Start(ctx, r.store, runID, MethodHybrid)
	if err != nil {
		r.running.Store(false)
		return models.StartRunResponse{}, err
	}

	slog.Info("run started", "job_id", runID, "targets", len(targets))
	go r.execute(runID, targets, tr)

	return models.StartRunResponse{
		JobID:  runID,
		Status: models.RunStatusRunning,
		Total:  len(targets),
	}, nil
}

// Running reports whether a batch is currently executing.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// GetRun returns the persisted summary for one run.
func (r *Runner) GetRun(ctx context.Context, runID string) (models.RunSummary, error) {
	return r.store.GetRun(ctx, runID)
}

// RecentRuns returns the most recent run summaries.
func (r *Runner) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	return r.store.RecentRuns(ctx, limit)
}

func (r *Runner) execute(runID string, targets []models.Target, tr *tracker.Tracker) {
	defer r.running.Store(false)

	// The batch outlives the HTTP request that started it.
	ctx := context.Background()
	start := time.Now()

	runErr := r.orch.Run(ctx, targets, tr)
	if runErr != nil {
		if err := tr.Fail(ctx, runErr); err != nil {
			slog.Error("closing failed run", "job_id", runID, "error", err)
		}
	} else if err := tr.Complete(ctx); err != nil {
		slog.Error("closing completed run", "job_id", runID, "error", err)
	}

	summary := tr.Summary()
	slog.Info("run finished",
		"job_id", runID,
		"status", summary.Status,
		"schools_processed", summary.TargetsProcessed,
		"coaches_extracted", summary.RecordsExtracted,
		"success_rate", summary.SuccessRate,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if path, err := tr.WriteReport(r.cfg.Orchestrator.ReportDir); err != nil {
		slog.Warn("writing run report", "job_id", runID, "error", err)
	} else {
		slog.Info("run report written", "job_id", runID, "path", path)
	}

	r.notify(runID, summary, runErr)
}

// notify fires the run-completion webhook when one is configured.
func (r *Runner) notify(runID string, summary models.RunSummary, runErr error) {
	if r.cfg.Webhook.URL == "" {
		return
	}
	eventType := "run.completed"
	if runErr != nil || summary.Status == models.RunStatusFailed {
		eventType = "run.failed"
	}
	webhook.DeliverAsync(r.cfg.Webhook.URL, r.cfg.Webhook.Secret, &webhook.Event{
		Type:      eventType,
		JobID:     runID,
		Timestamp: time.Now().Unix(),
		Data:      summary,
	})
}
