package strategy

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/coachscout/coachscout/cache"
	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/extract"
)

const staffMarkdown = `# Coaching Staff

| [Jane Doe](https://athletics.example.edu/jane) | Head Basketball Coach |
| [John Smith](https://athletics.example.edu/john) | Assistant Football Coach |
| [Lisa Green](https://athletics.example.edu/lisa) | Recruiting Coordinator |
`

func newTestRemote(cfg config.RemoteConfig, pages *cache.Cache) *RemoteStrategy {
	s := NewRemoteStrategy(cfg, extract.NewExtractor(), pages)
	// httpmock needs a transport it can intercept; the Chrome TLS dialer
	// bypasses it.
	s.client = &http.Client{Timeout: cfg.Timeout}
	httpmock.ActivateNonDefault(s.client)
	return s
}

func TestRemoteScrape_ExtractionAPI(t *testing.T) {
	cfg := config.RemoteConfig{
		APIBaseURL: "https://extract.example.com",
		APIKey:     "test-key",
		Timeout:    5 * time.Second,
	}
	s := newTestRemote(cfg, nil)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://extract.example.com/v1/scrape",
		func(req *http.Request) (*http.Response, error) {
			if got := req.Header.Get("Authorization"); got != "Bearer test-key" {
				t.Errorf("authorization header = %q", got)
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"success": true,
				"data":    map[string]any{"markdown": staffMarkdown},
			})
		})

	res := s.Scrape(context.Background(), testTarget())
	if !res.Success {
		t.Fatalf("expected success: %v", res.Err)
	}
	if res.StrategyUsed != NameRemote {
		t.Errorf("strategy = %q", res.StrategyUsed)
	}
	if len(res.StaffRecords) != 3 {
		t.Fatalf("records = %d, want 3", len(res.StaffRecords))
	}
	for _, rec := range res.StaffRecords {
		if rec.SourceStrategy != NameRemote {
			t.Errorf("record %q strategy = %q", rec.Name, rec.SourceStrategy)
		}
	}
}

func TestRemoteScrape_APIErrorBecomesFailedResult(t *testing.T) {
	cfg := config.RemoteConfig{APIBaseURL: "https://extract.example.com", Timeout: 5 * time.Second}
	s := newTestRemote(cfg, nil)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://extract.example.com/v1/scrape",
		httpmock.NewStringResponder(500, "internal error"))

	res := s.Scrape(context.Background(), testTarget())
	if res.Success {
		t.Fatal("expected failure on API error")
	}
	if res.Err == nil {
		t.Fatal("failed result must carry the error")
	}
}

func TestRemoteScrape_DirectFetchFallsBackWithoutAPI(t *testing.T) {
	cfg := config.RemoteConfig{Timeout: 5 * time.Second}
	s := newTestRemote(cfg, nil)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodGet, "https://athletics.example.edu",
		httpmock.NewStringResponder(200, staffPage))

	res := s.Scrape(context.Background(), testTarget())
	if !res.Success {
		t.Fatalf("expected success: %v", res.Err)
	}
	if len(res.StaffRecords) != 2 {
		t.Errorf("records = %d, want 2", len(res.StaffRecords))
	}
}

func TestRemoteScrape_EmptyContentFails(t *testing.T) {
	cfg := config.RemoteConfig{APIBaseURL: "https://extract.example.com", Timeout: 5 * time.Second}
	s := newTestRemote(cfg, nil)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://extract.example.com/v1/scrape",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"success": true,
			"data":    map[string]any{"markdown": ""},
		}))

	res := s.Scrape(context.Background(), testTarget())
	if res.Success {
		t.Fatal("empty extraction content must fail")
	}
}

func TestRemoteScrape_ContentCacheAvoidsRefetch(t *testing.T) {
	cfg := config.RemoteConfig{APIBaseURL: "https://extract.example.com", Timeout: 5 * time.Second}
	s := newTestRemote(cfg, cache.New(10, time.Hour))
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder(http.MethodPost, "https://extract.example.com/v1/scrape",
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"success": true,
			"data":    map[string]any{"markdown": staffMarkdown},
		}))

	s.Scrape(context.Background(), testTarget())
	s.Scrape(context.Background(), testTarget())

	if calls := httpmock.GetTotalCallCount(); calls != 1 {
		t.Errorf("API calls = %d, want 1 (second scrape served from cache)", calls)
	}
}
