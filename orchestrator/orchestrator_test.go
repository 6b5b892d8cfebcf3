package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/models"
)

// fakeStrategy returns a canned result and counts invocations.
type fakeStrategy struct {
	name    string
	records int
	fail    bool
	calls   int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Scrape(ctx context.Context, target models.Target) *models.ScrapeAttemptResult {
	f.calls++
	if f.fail {
		return &models.ScrapeAttemptResult{
			Target:       target,
			StrategyUsed: f.name,
			Err:          errors.New("blocked"),
			ErrorMessage: "blocked",
		}
	}
	records := make([]models.StaffRecord, f.records)
	for i := range records {
		records[i] = models.StaffRecord{Name: "Jane Doe", Title: "Head Coach", ConfidenceScore: 0.8}
	}
	return &models.ScrapeAttemptResult{
		Target:       target,
		StrategyUsed: f.name,
		Success:      f.records > 0,
		StaffRecords: records,
	}
}

type fakeRecorder struct {
	results []*models.ScrapeAttemptResult
}

func (r *fakeRecorder) RecordAttempt(res *models.ScrapeAttemptResult) {
	r.results = append(r.results, res)
}

func testConfig() config.OrchestratorConfig {
	return config.OrchestratorConfig{
		FallbackThreshold: 3,
		DifficultTargets:  []string{"Alabama"},
	}
}

func target(name string) models.Target {
	return models.Target{ID: 1, DisplayName: name, BaseURL: "https://athletics.example.edu"}
}

func TestProcessTarget_PrimaryMeetsThreshold(t *testing.T) {
	primary := &fakeStrategy{name: "remote", records: 3}
	fallback := &fakeStrategy{name: "browser", records: 5}
	o := New(testConfig(), primary, fallback, nil)

	res := o.ProcessTarget(context.Background(), target("Example State"))

	if !res.Success {
		t.Fatal("expected success")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback invoked %d times, want 0 at threshold", fallback.calls)
	}
	if res.StrategyUsed != "remote" {
		t.Errorf("strategy = %q", res.StrategyUsed)
	}
}

func TestProcessTarget_UnderThresholdTriggersFallback(t *testing.T) {
	primary := &fakeStrategy{name: "remote", records: 2}
	fallback := &fakeStrategy{name: "browser", records: 5}
	o := New(testConfig(), primary, fallback, nil)

	res := o.ProcessTarget(context.Background(), target("Example State"))

	if primary.calls != 1 {
		t.Errorf("primary calls = %d, want 1", primary.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1 (2 records is below threshold 3)", fallback.calls)
	}
	if res.StrategyUsed != "browser" {
		t.Errorf("strategy = %q, want browser", res.StrategyUsed)
	}
}

func TestProcessTarget_PrimaryFailureTriggersFallback(t *testing.T) {
	primary := &fakeStrategy{name: "remote", fail: true}
	fallback := &fakeStrategy{name: "browser", records: 4}
	o := New(testConfig(), primary, fallback, nil)

	res := o.ProcessTarget(context.Background(), target("Example State"))

	if !res.Success {
		t.Fatal("fallback should have rescued the target")
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fallback.calls)
	}
}

func TestProcessTarget_KnownDifficultBypassesPrimary(t *testing.T) {
	primary := &fakeStrategy{name: "remote", records: 10}
	fallback := &fakeStrategy{name: "browser", records: 4}
	o := New(testConfig(), primary, fallback, nil)

	res := o.ProcessTarget(context.Background(), target("University of Alabama"))

	if primary.calls != 0 {
		t.Errorf("primary invoked %d times for difficult target, want 0", primary.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fallback.calls)
	}
	if !res.Success {
		t.Fatal("expected success via fallback")
	}
}

func TestProcessTarget_FallbackFailureIsTerminal(t *testing.T) {
	primary := &fakeStrategy{name: "remote", fail: true}
	fallback := &fakeStrategy{name: "browser", fail: true}
	o := New(testConfig(), primary, fallback, nil)

	res := o.ProcessTarget(context.Background(), target("Example State"))

	if res.Success {
		t.Fatal("expected terminal failure")
	}
	if res.ErrorMessage == "" {
		t.Error("failed result must carry an error message")
	}
}

func TestRun_RecordsEveryTarget(t *testing.T) {
	primary := &fakeStrategy{name: "remote", records: 4}
	fallback := &fakeStrategy{name: "browser", records: 4}
	o := New(testConfig(), primary, fallback, nil)
	rec := &fakeRecorder{}

	targets := []models.Target{target("One University"), target("Two College"), target("Three State")}
	if err := o.Run(context.Background(), targets, rec); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rec.results) != 3 {
		t.Errorf("recorded %d results, want 3", len(rec.results))
	}
}

func TestRun_AbortsBetweenTargets(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	primary := &fakeStrategy{name: "remote", records: 4}
	fallback := &fakeStrategy{name: "browser", records: 4}

	cfg := testConfig()
	cfg.TargetDelay = 50 * time.Millisecond
	o := New(cfg, primary, fallback, nil)
	rec := &fakeRecorder{}

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	targets := []models.Target{target("One University"), target("Two College"), target("Three State")}
	err := o.Run(ctx, targets, rec)
	if err == nil {
		t.Fatal("expected context error")
	}
	if len(rec.results) >= len(targets) {
		t.Errorf("all targets processed despite cancellation")
	}
}

func TestIsDifficult(t *testing.T) {
	o := New(testConfig(), nil, nil, nil)
	if !o.IsDifficult(target("ALABAMA A&M")) {
		t.Error("substring match should be case-insensitive")
	}
	if o.IsDifficult(target("Vermont State")) {
		t.Error("unlisted target flagged difficult")
	}
}

type failingStore struct{}

func (failingStore) UpsertStaff(ctx context.Context, targetID int64, records []models.StaffRecord) error {
	return errors.New("disk full")
}

func TestRun_UpsertFailureDoesNotAbortBatch(t *testing.T) {
	primary := &fakeStrategy{name: "remote", records: 4}
	fallback := &fakeStrategy{name: "browser", records: 4}
	o := New(testConfig(), primary, fallback, failingStore{})
	rec := &fakeRecorder{}

	targets := []models.Target{target("One University"), target("Two College")}
	if err := o.Run(context.Background(), targets, rec); err != nil {
		t.Fatalf("upsert failure must not abort the batch: %v", err)
	}
	if len(rec.results) != 2 {
		t.Errorf("recorded %d results, want 2", len(rec.results))
	}
	if rec.results[0].ErrorMessage == "" {
		t.Error("upsert failure should surface on the target result")
	}
}
