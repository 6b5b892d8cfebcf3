package models

import "time"

// Run statuses persisted with a RunSummary.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunError is one per-target error recorded on a run.
type RunError struct {
	Target    string    `json:"target"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// RunSummary is the aggregate bookkeeping for one batch-scrape execution.
// It is mutated incrementally as each target completes and closed
// (CompletedAt set) when the batch finishes or fails fatally.
type RunSummary struct {
	RunID            string     `json:"job_id"`
	Method           string     `json:"method"`
	Status           string     `json:"status"`
	TargetsProcessed int        `json:"schools_processed"`
	RecordsExtracted int        `json:"coaches_extracted"`
	SuccessRate      float64    `json:"success_rate"`
	AvgElapsedMs     int64      `json:"avg_elapsed_ms"`
	Errors           []RunError `json:"errors"`
	StartedAt        time.Time  `json:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
}

// RunReport is the file-based summary written at batch completion for
// offline inspection: the aggregate summary plus per-target results.
type RunReport struct {
	Summary RunSummary            `json:"summary"`
	Results []ScrapeAttemptResult `json:"results"`
}
