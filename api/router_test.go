package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coachscout/coachscout/cache"
	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/extract"
	"github.com/coachscout/coachscout/models"
	"github.com/coachscout/coachscout/orchestrator"
	"github.com/coachscout/coachscout/runner"
	"github.com/coachscout/coachscout/store"
	"github.com/coachscout/coachscout/strategy"
)

type stubBrowser struct{ active bool }

func (s stubBrowser) Active() bool { return s.active }

func testRouter(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Auth.Enabled = false

	extractor := extract.NewExtractor()
	remote := strategy.NewRemoteStrategy(cfg.Remote, extractor, cache.New(10, time.Minute))
	browser := strategy.NewBrowserStrategy(cfg.Browser, cfg.Scraper, extractor, strategy.NoDelay())

	orch := orchestrator.New(cfg.Orchestrator, remote, browser, st)
	run := runner.New(cfg, st, orch)

	srv := httptest.NewServer(NewRouter(run, st, stubBrowser{active: false}, cfg, time.Now()))
	t.Cleanup(srv.Close)
	return srv, st
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testRouter(t)

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var health models.HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("status = %q, want healthy", health.Status)
	}
	if health.BrowserActive {
		t.Error("browser should be inactive before any scrape")
	}
}

func TestGetRunNotFound(t *testing.T) {
	srv, _ := testRouter(t)

	resp, err := http.Get(srv.URL + "/api/v1/runs/no-such-run")
	if err != nil {
		t.Fatalf("GET run: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestPostRunWithNoTargets(t *testing.T) {
	srv, _ := testRouter(t)

	resp, err := http.Post(srv.URL+"/api/v1/runs", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("POST run: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	var apiErr models.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Error == nil || apiErr.Error.Code != models.ErrCodeInvalidInput {
		t.Errorf("error = %+v, want code %s", apiErr.Error, models.ErrCodeInvalidInput)
	}
}

func TestListRunsReturnsPersisted(t *testing.T) {
	srv, st := testRouter(t)

	ctx := context.Background()
	if err := st.InsertRun(ctx, models.RunSummary{
		RunID:     "run-1",
		Method:    runner.MethodHybrid,
		Status:    models.RunStatusCompleted,
		StartedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("insert run: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/v1/runs?limit=5")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var list models.RunListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Runs) != 1 || list.Runs[0].RunID != "run-1" {
		t.Errorf("runs = %+v, want single run-1", list.Runs)
	}
}

func TestAuthRequiredWhenEnabled(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []string{"secret-key"}

	extractor := extract.NewExtractor()
	remote := strategy.NewRemoteStrategy(cfg.Remote, extractor, cache.New(10, time.Minute))
	browser := strategy.NewBrowserStrategy(cfg.Browser, cfg.Scraper, extractor, strategy.NoDelay())
	run := runner.New(cfg, st, orchestrator.New(cfg.Orchestrator, remote, browser, st))

	srv := httptest.NewServer(NewRouter(run, st, stubBrowser{}, cfg, time.Now()))
	t.Cleanup(srv.Close)

	// No key: rejected.
	resp, err := http.Get(srv.URL + "/api/v1/runs")
	if err != nil {
		t.Fatalf("GET runs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without key = %d, want 401", resp.StatusCode)
	}

	// Valid key: accepted.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/runs", nil)
	req.Header.Set("X-API-Key", "secret-key")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET runs with key: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with key = %d, want 200", resp.StatusCode)
	}

	// Health stays open.
	resp, err = http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
}
