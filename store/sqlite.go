// Package store persists staff records, targets, and run summaries in
// SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/coachscout/coachscout/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS targets (
	id        INTEGER PRIMARY KEY,
	name      TEXT NOT NULL,
	base_url  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS staff_records (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	school_id        INTEGER NOT NULL,
	name             TEXT NOT NULL COLLATE NOCASE,
	title            TEXT NOT NULL,
	sport            TEXT NOT NULL,
	email            TEXT,
	phone            TEXT,
	bio              TEXT,
	photo_url        TEXT,
	confidence_score REAL NOT NULL,
	source_strategy  TEXT NOT NULL,
	extracted_at     TIMESTAMP NOT NULL,
	UNIQUE(school_id, name, sport)
);

CREATE TABLE IF NOT EXISTS scrape_runs (
	run_id            TEXT PRIMARY KEY,
	method            TEXT NOT NULL,
	status            TEXT NOT NULL,
	targets_processed INTEGER NOT NULL DEFAULT 0,
	records_extracted INTEGER NOT NULL DEFAULT 0,
	success_rate      REAL NOT NULL DEFAULT 0,
	avg_elapsed_ms    INTEGER NOT NULL DEFAULT 0,
	errors            TEXT NOT NULL DEFAULT '[]',
	started_at        TIMESTAMP NOT NULL,
	completed_at      TIMESTAMP
);
`

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path.
func Open(path string) (*Store, error) {
	// WAL keeps readers (the status API) unblocked while a run writes.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertStaff inserts or refreshes staff records for a school. Re-scrapes
// overwrite title, sport, contact, and provenance for an existing
// (school, name, sport) row.
func (s *Store) UpsertStaff(ctx context.Context, targetID int64, records []models.StaffRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin upsert: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO staff_records
			(school_id, name, title, sport, email, phone, bio, photo_url,
			 confidence_score, source_strategy, extracted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(school_id, name, sport) DO UPDATE SET
			title = excluded.title,
			email = excluded.email,
			phone = excluded.phone,
			bio = excluded.bio,
			photo_url = excluded.photo_url,
			confidence_score = excluded.confidence_score,
			source_strategy = excluded.source_strategy,
			extracted_at = excluded.extracted_at`)
	if err != nil {
		return fmt.Errorf("store: prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			targetID, rec.Name, rec.Title, rec.Sport, rec.Email, rec.Phone,
			rec.Bio, rec.PhotoURL, rec.ConfidenceScore, rec.SourceStrategy,
			rec.ExtractedAt,
		); err != nil {
			return fmt.Errorf("store: upsert %q: %w", rec.Name, err)
		}
	}
	return tx.Commit()
}

// StaffByTarget returns the stored records for one school.
func (s *Store) StaffByTarget(ctx context.Context, targetID int64) ([]models.StaffRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, title, sport, email, phone, bio, photo_url,
		       confidence_score, source_strategy, extracted_at
		FROM staff_records WHERE school_id = ? ORDER BY name`, targetID)
	if err != nil {
		return nil, fmt.Errorf("store: query staff: %w", err)
	}
	defer rows.Close()

	var records []models.StaffRecord
	for rows.Next() {
		var rec models.StaffRecord
		var email, phone, bio, photo sql.NullString
		if err := rows.Scan(&rec.Name, &rec.Title, &rec.Sport, &email, &phone,
			&bio, &photo, &rec.ConfidenceScore, &rec.SourceStrategy, &rec.ExtractedAt); err != nil {
			return nil, fmt.Errorf("store: scan staff: %w", err)
		}
		rec.Email, rec.Phone, rec.Bio, rec.PhotoURL = email.String, phone.String, bio.String, photo.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListTargets enumerates scrape targets. ids filters to specific schools;
// limit caps the result when positive.
func (s *Store) ListTargets(ctx context.Context, ids []int64, limit int) ([]models.Target, error) {
	query := `SELECT id, name, base_url FROM targets WHERE base_url != ''`
	var args []any
	if len(ids) > 0 {
		placeholders := strings.Repeat("?,", len(ids))
		query += ` AND id IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list targets: %w", err)
	}
	defer rows.Close()

	var targets []models.Target
	for rows.Next() {
		var t models.Target
		if err := rows.Scan(&t.ID, &t.DisplayName, &t.BaseURL); err != nil {
			return nil, fmt.Errorf("store: scan target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// AddTarget inserts a target, mainly used by tests and seeding scripts.
func (s *Store) AddTarget(ctx context.Context, t models.Target) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO targets (id, name, base_url) VALUES (?, ?, ?)`,
		t.ID, t.DisplayName, t.BaseURL)
	if err != nil {
		return fmt.Errorf("store: add target: %w", err)
	}
	return nil
}

// InsertRun persists a new run summary row.
func (s *Store) InsertRun(ctx context.Context, run models.RunSummary) error {
	errJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("store: marshal run errors: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scrape_runs
			(run_id, method, status, targets_processed, records_extracted,
			 success_rate, avg_elapsed_ms, errors, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Method, run.Status, run.TargetsProcessed,
		run.RecordsExtracted, run.SuccessRate, run.AvgElapsedMs,
		string(errJSON), run.StartedAt, run.CompletedAt)
	if err != nil {
		return fmt.Errorf("store: insert run: %w", err)
	}
	return nil
}

// UpdateRun rewrites the mutable fields of a run summary row.
func (s *Store) UpdateRun(ctx context.Context, run models.RunSummary) error {
	errJSON, err := json.Marshal(run.Errors)
	if err != nil {
		return fmt.Errorf("store: marshal run errors: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE scrape_runs SET
			status = ?, targets_processed = ?, records_extracted = ?,
			success_rate = ?, avg_elapsed_ms = ?, errors = ?, completed_at = ?
		WHERE run_id = ?`,
		run.Status, run.TargetsProcessed, run.RecordsExtracted,
		run.SuccessRate, run.AvgElapsedMs, string(errJSON), run.CompletedAt,
		run.RunID)
	if err != nil {
		return fmt.Errorf("store: update run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: update run: unknown run %q", run.RunID)
	}
	return nil
}

// GetRun fetches one run summary by identifier.
func (s *Store) GetRun(ctx context.Context, runID string) (models.RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, method, status, targets_processed, records_extracted,
		       success_rate, avg_elapsed_ms, errors, started_at, completed_at
		FROM scrape_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// RecentRuns lists runs ordered by start time descending.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]models.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, method, status, targets_processed, records_extracted,
		       success_rate, avg_elapsed_ms, errors, started_at, completed_at
		FROM scrape_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: recent runs: %w", err)
	}
	defer rows.Close()

	var runs []models.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (models.RunSummary, error) {
	var run models.RunSummary
	var errJSON string
	var completed sql.NullTime
	if err := sc.Scan(&run.RunID, &run.Method, &run.Status,
		&run.TargetsProcessed, &run.RecordsExtracted, &run.SuccessRate,
		&run.AvgElapsedMs, &errJSON, &run.StartedAt, &completed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, ErrNotFound
		}
		return run, fmt.Errorf("store: scan run: %w", err)
	}
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	if err := json.Unmarshal([]byte(errJSON), &run.Errors); err != nil {
		run.Errors = []models.RunError{{Message: "corrupt error log", Timestamp: time.Now()}}
	}
	return run, nil
}
