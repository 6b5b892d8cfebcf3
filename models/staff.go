package models

import "time"

// Target is one athletic program to be scraped, identified by the base URL
// of its athletics site. Targets are supplied externally (store or explicit
// list) and are immutable for the duration of a run.
type Target struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"name"`
	BaseURL     string `json:"base_url"`
}

// RawContent is the output of one acquisition attempt: the page content a
// strategy fetched, normalised to plain text/markdown. It is transient —
// consumed once by the extraction engine, never persisted.
type RawContent struct {
	SourceURL string
	Text      string
	Length    int
	Strategy  string
}

// StaffRecord is one validated coaching-staff entry.
//
// Invariants: Name is non-empty and passed the name validator; Title is one
// of the normalized coaching titles; ConfidenceScore is in [0,1].
type StaffRecord struct {
	Name            string    `json:"name"`
	Title           string    `json:"title"`
	Sport           string    `json:"sport"`
	Email           string    `json:"email,omitempty"`
	Phone           string    `json:"phone,omitempty"`
	Bio             string    `json:"bio,omitempty"`
	PhotoURL        string    `json:"photo_url,omitempty"`
	ConfidenceScore float64   `json:"confidence_score"`
	SourceStrategy  string    `json:"source_strategy"`
	ExtractedAt     time.Time `json:"extracted_at"`
}

// ScrapeAttemptResult is the per-target outcome of one strategy invocation
// (or of the whole primary+fallback sequence, as assembled by the
// orchestrator).
type ScrapeAttemptResult struct {
	Target       Target        `json:"target"`
	StrategyUsed string        `json:"strategy_used"`
	Success      bool          `json:"success"`
	StaffRecords []StaffRecord `json:"staff_records"`
	SourceURL    string        `json:"source_url,omitempty"`
	ElapsedMs    int64         `json:"elapsed_ms"`
	Err          error         `json:"-"`
	ErrorMessage string        `json:"error,omitempty"`
}
