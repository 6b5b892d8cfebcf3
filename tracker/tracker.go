// Package tracker owns the RunSummary for one batch: incremental progress
// bookkeeping, terminal persistence, and the offline JSON report.
package tracker

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/coachscout/coachscout/models"
)

// RunStore is the persistence surface the tracker needs. *store.Store
// satisfies it.
type RunStore interface {
	InsertRun(ctx context.Context, run models.RunSummary) error
	UpdateRun(ctx context.Context, run models.RunSummary) error
}

// Tracker accumulates a RunSummary as targets complete. It is safe for
// concurrent use, though batches run sequentially today.
type Tracker struct {
	store RunStore

	mu        sync.Mutex
	summary   models.RunSummary
	results   []models.ScrapeAttemptResult
	succeeded int
	elapsedMs int64
}

// NewRunID generates a random run identifier.
func NewRunID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return "run-" + hex.EncodeToString(b)
}

// Start opens a new run: the initial running row is written to the store
// immediately, and failure to write it is batch-fatal.
func Start(ctx context.Context, store RunStore, runID, method string) (*Tracker, error) {
	t := &Tracker{
		store: store,
		summary: models.RunSummary{
			RunID:     runID,
			Method:    method,
			Status:    models.RunStatusRunning,
			Errors:    []models.RunError{},
			StartedAt: time.Now().UTC(),
		},
	}
	if err := store.InsertRun(ctx, t.summary); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeStoreFailure, "failed to open run", err)
	}
	return t, nil
}

// RecordAttempt folds one target outcome into the running aggregate and
// pushes a best-effort progress update to the store. Progress-update
// failures are logged, not fatal — only terminal persistence is.
func (t *Tracker) RecordAttempt(res *models.ScrapeAttemptResult) {
	t.mu.Lock()

	t.results = append(t.results, *res)
	t.summary.TargetsProcessed++
	t.summary.RecordsExtracted += len(res.StaffRecords)
	t.elapsedMs += res.ElapsedMs
	if res.Success {
		t.succeeded++
	}
	if res.ErrorMessage != "" {
		t.summary.Errors = append(t.summary.Errors, models.RunError{
			Target:    res.Target.DisplayName,
			Message:   res.ErrorMessage,
			Timestamp: time.Now().UTC(),
		})
	}

	t.summary.SuccessRate = float64(t.succeeded) / float64(t.summary.TargetsProcessed)
	t.summary.AvgElapsedMs = t.elapsedMs / int64(t.summary.TargetsProcessed)
	snapshot := t.summary
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.store.UpdateRun(ctx, snapshot); err != nil {
		slog.Warn("run progress update failed", "run", snapshot.RunID, "error", err)
	}
}

// Complete closes the run as finished and persists the terminal state.
func (t *Tracker) Complete(ctx context.Context) error {
	return t.finish(ctx, models.RunStatusCompleted, nil)
}

// Fail closes the run after an unrecoverable batch failure.
func (t *Tracker) Fail(ctx context.Context, cause error) error {
	return t.finish(ctx, models.RunStatusFailed, cause)
}

func (t *Tracker) finish(ctx context.Context, status string, cause error) error {
	t.mu.Lock()
	now := time.Now().UTC()
	t.summary.Status = status
	t.summary.CompletedAt = &now
	if cause != nil {
		t.summary.Errors = append(t.summary.Errors, models.RunError{
			Message:   cause.Error(),
			Timestamp: now,
		})
	}
	snapshot := t.summary
	t.mu.Unlock()

	if err := t.store.UpdateRun(ctx, snapshot); err != nil {
		return models.NewScrapeError(models.ErrCodeStoreFailure, "failed to close run", err)
	}
	return nil
}

// Summary returns a copy of the current aggregate.
func (t *Tracker) Summary() models.RunSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summary
}

// WriteReport writes the JSON run report (aggregate plus per-target
// results) into dir, creating it if needed. Returns the report path.
func (t *Tracker) WriteReport(dir string) (string, error) {
	t.mu.Lock()
	report := models.RunReport{Summary: t.summary, Results: t.results}
	t.mu.Unlock()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("tracker: create report dir: %w", err)
	}
	path := filepath.Join(dir, report.Summary.RunID+".json")

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("tracker: marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("tracker: write report: %w", err)
	}
	return path, nil
}
