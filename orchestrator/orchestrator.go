// Package orchestrator decides, per target, which acquisition strategy runs
// and when the expensive browser fallback is worth it.
package orchestrator

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/metrics"
	"github.com/coachscout/coachscout/models"
	"github.com/coachscout/coachscout/strategy"
)

// Per-target states. A target either succeeds on the primary strategy, or
// escalates to the fallback whose outcome is terminal.
const (
	StatePending        = "PENDING"
	StateTryingPrimary  = "TRYING_PRIMARY"
	StateTryingFallback = "TRYING_FALLBACK"
	StateSuccess        = "SUCCESS"
	StateFailed         = "FAILED"
)

// Recorder receives per-target outcomes as the batch progresses. The run
// tracker implements it.
type Recorder interface {
	RecordAttempt(res *models.ScrapeAttemptResult)
}

// StaffStore persists extracted records. Upsert failures are per-target
// errors, not batch-fatal.
type StaffStore interface {
	UpsertStaff(ctx context.Context, targetID int64, records []models.StaffRecord) error
}

// Orchestrator runs the hybrid primary/fallback strategy selection over a
// batch of targets, sequentially, with politeness delays between targets.
type Orchestrator struct {
	cfg      config.OrchestratorConfig
	primary  strategy.Strategy
	fallback strategy.Strategy
	staff    StaffStore
}

// New builds an Orchestrator. staff may be nil to skip persistence (dry
// runs).
func New(cfg config.OrchestratorConfig, primary, fallback strategy.Strategy, staff StaffStore) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		primary:  primary,
		fallback: fallback,
		staff:    staff,
	}
}

// Run processes the batch sequentially. Individual target failures are
// recorded and do not abort the batch; only context cancellation stops the
// walk, and only between targets.
func (o *Orchestrator) Run(ctx context.Context, targets []models.Target, rec Recorder) error {
	for i, target := range targets {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := o.ProcessTarget(ctx, target)
		o.persist(ctx, target, res)
		rec.RecordAttempt(res)

		outcome := metrics.OutcomeFailure
		if res.Success {
			outcome = metrics.OutcomeSuccess
		}
		metrics.TargetsProcessed.WithLabelValues(outcome).Inc()
		metrics.TargetDuration.Observe(float64(res.ElapsedMs) / 1000)

		// Politeness pause, skipped after the final target.
		if i < len(targets)-1 && o.cfg.TargetDelay > 0 {
			select {
			case <-time.After(o.cfg.TargetDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return nil
}

// ProcessTarget runs the per-target state machine:
//
//	PENDING → TRYING_PRIMARY → (SUCCESS | TRYING_FALLBACK) → (SUCCESS | FAILED)
//
// Known-difficult targets skip straight to TRYING_FALLBACK. Otherwise the
// primary strategy must return at least FallbackThreshold records to
// short-circuit the fallback — a coverage/cost tradeoff, not a recall
// guarantee.
func (o *Orchestrator) ProcessTarget(ctx context.Context, target models.Target) *models.ScrapeAttemptResult {
	start := time.Now()
	state := StatePending

	if o.IsDifficult(target) {
		slog.Info("known-difficult target, skipping primary strategy",
			"target", target.DisplayName,
		)
		state = StateTryingFallback
	} else {
		state = StateTryingPrimary
		res := o.primary.Scrape(ctx, target)
		o.observe(res)

		if res.Success && len(res.StaffRecords) >= o.cfg.FallbackThreshold {
			state = StateSuccess
			slog.Info("target complete via primary strategy",
				"target", target.DisplayName,
				"records", len(res.StaffRecords),
				"state", state,
			)
			return res
		}

		state = StateTryingFallback
		slog.Info("primary under-delivered, escalating to browser",
			"target", target.DisplayName,
			"records", len(res.StaffRecords),
			"threshold", o.cfg.FallbackThreshold,
		)
	}

	// Fallback outcome is terminal for the target.
	res := o.fallback.Scrape(ctx, target)
	o.observe(res)
	res.ElapsedMs = time.Since(start).Milliseconds()

	if res.Success {
		state = StateSuccess
	} else {
		state = StateFailed
	}
	slog.Info("target complete via fallback strategy",
		"target", target.DisplayName,
		"records", len(res.StaffRecords),
		"state", state,
	)
	return res
}

// IsDifficult reports whether the target matches the known-difficult
// heuristic: a case-insensitive substring match against historically
// bot-resistant program names.
func (o *Orchestrator) IsDifficult(target models.Target) bool {
	name := strings.ToLower(target.DisplayName)
	for _, marker := range o.cfg.DifficultTargets {
		if strings.Contains(name, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) observe(res *models.ScrapeAttemptResult) {
	outcome := metrics.OutcomeFailure
	if res.Success {
		outcome = metrics.OutcomeSuccess
	}
	metrics.StrategyAttempts.WithLabelValues(res.StrategyUsed, outcome).Inc()
	if n := len(res.StaffRecords); n > 0 {
		metrics.RecordsExtracted.WithLabelValues(res.StrategyUsed).Add(float64(n))
	}
}

func (o *Orchestrator) persist(ctx context.Context, target models.Target, res *models.ScrapeAttemptResult) {
	if o.staff == nil || len(res.StaffRecords) == 0 {
		return
	}
	if err := o.staff.UpsertStaff(ctx, target.ID, res.StaffRecords); err != nil {
		// Persistence trouble for one target should not sink the batch;
		// surface it on the result so the tracker records it.
		slog.Error("staff upsert failed", "target", target.DisplayName, "error", err)
		if res.Err == nil {
			res.Err = models.NewScrapeError(models.ErrCodeStoreFailure, "staff upsert failed", err)
			res.ErrorMessage = res.Err.Error()
		}
	}
}
