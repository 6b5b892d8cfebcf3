package strategy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/extract"
	"github.com/coachscout/coachscout/models"
)

const staffPage = `<html><body><table>
<tr><td>Jane Doe</td><td>Head Basketball Coach</td></tr>
<tr><td>John Smith</td><td>Assistant Football Coach</td></tr>
</table></body></html>`

func testTarget() models.Target {
	return models.Target{ID: 1, DisplayName: "Example State", BaseURL: "https://athletics.example.edu"}
}

func testBrowserStrategy(cfg config.ScraperConfig, fetch fetchPageFunc) *BrowserStrategy {
	s := NewBrowserStrategy(config.BrowserConfig{}, cfg, extract.NewExtractor(), NoDelay())
	s.fetchPage = fetch
	return s
}

func fastScraperConfig(paths ...string) config.ScraperConfig {
	return config.ScraperConfig{
		NavigationTimeout: time.Second,
		SelectorTimeout:   time.Millisecond,
		MaxRetries:        3,
		RetryBaseDelay:    time.Millisecond,
		RetryMaxDelay:     5 * time.Millisecond,
		StaffPaths:        paths,
	}
}

func TestBrowserScrape_RetrySucceedsOnThirdAttempt(t *testing.T) {
	attempts := 0
	const perAttempt = 20 * time.Millisecond

	fetch := func(ctx context.Context, pageURL string) (string, error) {
		attempts++
		time.Sleep(perAttempt)
		if attempts < 3 {
			return "", errors.New("connection reset")
		}
		return staffPage, nil
	}

	s := testBrowserStrategy(fastScraperConfig("/staff"), fetch)
	res := s.Scrape(context.Background(), testTarget())

	if !res.Success {
		t.Fatalf("expected success after retries, got error: %v", res.Err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	// Elapsed time must cover all three attempts, not just the last.
	if res.ElapsedMs < int64(3*perAttempt/time.Millisecond) {
		t.Errorf("elapsed = %dms, want >= %dms", res.ElapsedMs, 3*perAttempt/time.Millisecond)
	}
	if len(res.StaffRecords) != 2 {
		t.Errorf("records = %d, want 2", len(res.StaffRecords))
	}
}

func TestBrowserScrape_AllPathsExhausted(t *testing.T) {
	calls := 0
	fetch := func(ctx context.Context, pageURL string) (string, error) {
		calls++
		return "", errors.New("blocked")
	}

	s := testBrowserStrategy(fastScraperConfig("/staff", "/coaches"), fetch)
	res := s.Scrape(context.Background(), testTarget())

	if res.Success {
		t.Fatal("expected failure when every path errors")
	}
	if res.Err == nil || res.ErrorMessage == "" {
		t.Error("failed result must carry the last error")
	}
	if res.StrategyUsed != NameBrowser {
		t.Errorf("strategy = %q", res.StrategyUsed)
	}
	// 2 paths x 3 attempts each.
	if calls != 6 {
		t.Errorf("fetch calls = %d, want 6", calls)
	}
}

func TestBrowserScrape_StopsAtFirstProductivePath(t *testing.T) {
	var fetched []string
	fetch := func(ctx context.Context, pageURL string) (string, error) {
		fetched = append(fetched, pageURL)
		return staffPage, nil
	}

	s := testBrowserStrategy(fastScraperConfig("/staff", "/coaches", ""), fetch)
	res := s.Scrape(context.Background(), testTarget())

	if !res.Success {
		t.Fatalf("expected success: %v", res.Err)
	}
	if len(fetched) != 1 {
		t.Errorf("fetched %d paths, want 1 (stop at first yield): %v", len(fetched), fetched)
	}
	if res.SourceURL != "https://athletics.example.edu/staff" {
		t.Errorf("source = %q", res.SourceURL)
	}
}

func TestBrowserScrape_SkipsAliasedPages(t *testing.T) {
	noStaff := "<html><body><p>Welcome to our athletics site. Support the team, buy tickets, and follow the latest program news throughout the season.</p></body></html>"
	pages := map[string]string{
		"https://athletics.example.edu/staff":   noStaff,
		"https://athletics.example.edu/coaches": noStaff, // alias of /staff
		"https://athletics.example.edu":         staffPage,
	}
	fetch := func(ctx context.Context, pageURL string) (string, error) {
		return pages[pageURL], nil
	}

	s := testBrowserStrategy(fastScraperConfig("/staff", "/coaches", ""), fetch)
	res := s.Scrape(context.Background(), testTarget())

	if !res.Success {
		t.Fatalf("expected success from base URL: %v", res.Err)
	}
	if res.SourceURL != "https://athletics.example.edu" {
		t.Errorf("source = %q", res.SourceURL)
	}
}

func TestBrowserScrape_ContextCancelStopsPathWalk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(ctx context.Context, pageURL string) (string, error) {
		calls++
		cancel()
		return "", ctx.Err()
	}

	cfg := fastScraperConfig("/staff", "/coaches", "/coaching-staff")
	cfg.MaxRetries = 1
	s := testBrowserStrategy(cfg, fetch)
	res := s.Scrape(ctx, testTarget())

	if res.Success {
		t.Fatal("expected failure")
	}
	if calls != 1 {
		t.Errorf("fetch calls after cancel = %d, want 1", calls)
	}
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"https://x.edu", "/staff", "https://x.edu/staff"},
		{"https://x.edu/", "/staff", "https://x.edu/staff"},
		{"https://x.edu", "", "https://x.edu"},
	}
	for _, tt := range tests {
		if got := joinURL(tt.base, tt.path); got != tt.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tt.base, tt.path, got, tt.want)
		}
	}
}

func TestDelayPolicy_Bounds(t *testing.T) {
	d := NewDelayPolicy(100*time.Millisecond, 0.5)
	for i := 0; i < 100; i++ {
		next := d.Next()
		if next < 50*time.Millisecond || next > 150*time.Millisecond {
			t.Fatalf("delay %v outside [50ms,150ms]", next)
		}
	}
}

func TestDelayPolicy_Zero(t *testing.T) {
	if got := NoDelay().Next(); got != 0 {
		t.Errorf("NoDelay().Next() = %v, want 0", got)
	}
}

func TestContentFingerprint(t *testing.T) {
	a := contentFingerprint("head coach jane doe leads the basketball program")
	b := contentFingerprint("head coach jane doe leads the basketball program")
	if a != b {
		t.Error("identical text produced different fingerprints")
	}

	c := contentFingerprint(fmt.Sprintf("completely different page about %s", "ticket sales and donation drives"))
	if isDuplicatePage(c, []uint64{a}) {
		t.Error("unrelated pages flagged as duplicates")
	}
	if !isDuplicatePage(a, []uint64{b}) {
		t.Error("identical pages not flagged as duplicates")
	}
}
