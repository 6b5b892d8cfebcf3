package strategy

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/extract"
	"github.com/coachscout/coachscout/models"
)

// staffSignalSelector is the DOM heuristic for "this page lists people":
// a table, a roster grid, or staff-card markup. Waiting for it is bounded
// and non-fatal — many static pages never fire it and still extract fine.
const staffSignalSelector = "table, [class*='staff'], [class*='coach'], [class*='roster'], [class*='directory']"

// fetchPageFunc fetches one URL and returns the rendered HTML. Injectable
// so retry behavior is testable without a browser.
type fetchPageFunc func(ctx context.Context, pageURL string) (string, error)

// BrowserStrategy acquires page content by driving a headless browser
// configured to minimize bot-detection signals, walking an ordered list of
// candidate staff-directory paths under the target's base URL.
//
// One browser process is shared across targets within a batch; each
// navigation opens a fresh page that is closed on every exit path.
type BrowserStrategy struct {
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	extractor  *extract.Extractor
	delay      *DelayPolicy
	fetchPage  fetchPageFunc

	mu      sync.Mutex
	browser *rod.Browser
}

// NewBrowserStrategy builds the stealth browser strategy. The browser is
// launched lazily on first use so a batch that never falls back pays
// nothing for it.
func NewBrowserStrategy(browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, extractor *extract.Extractor, delay *DelayPolicy) *BrowserStrategy {
	s := &BrowserStrategy{
		browserCfg: browserCfg,
		scraperCfg: scraperCfg,
		extractor:  extractor,
		delay:      delay,
	}
	s.fetchPage = s.fetchWithRod
	return s
}

func (s *BrowserStrategy) Name() string { return NameBrowser }

// Scrape walks the candidate staff paths for the target, fetching each with
// retry/backoff, and stops at the first path that yields at least one staff
// record. Exhausting every path returns a failed result carrying the last
// error.
func (s *BrowserStrategy) Scrape(ctx context.Context, target models.Target) *models.ScrapeAttemptResult {
	start := time.Now()

	var lastErr error
	var seenPages []uint64

	for _, path := range s.scraperCfg.StaffPaths {
		pageURL := joinURL(target.BaseURL, path)

		html, err := s.fetchWithRetry(ctx, pageURL)
		if err != nil {
			lastErr = err
			slog.Debug("staff path failed",
				"target", target.DisplayName,
				"url", pageURL,
				"error", err,
			)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		text := extract.NormalizeHTML(html, hostOf(pageURL))

		// Athletic sites alias staff paths heavily (/staff and /coaches
		// often serve the same page). Skip near-duplicate content instead
		// of re-extracting it.
		fp := contentFingerprint(text)
		if isDuplicatePage(fp, seenPages) {
			continue
		}
		seenPages = append(seenPages, fp)

		content := models.RawContent{
			SourceURL: pageURL,
			Text:      text,
			Length:    len(text),
			Strategy:  s.Name(),
		}
		if records := s.extractor.Extract(content); len(records) > 0 {
			return &models.ScrapeAttemptResult{
				Target:       target,
				StrategyUsed: s.Name(),
				Success:      true,
				StaffRecords: records,
				SourceURL:    pageURL,
				ElapsedMs:    time.Since(start).Milliseconds(),
			}
		}
	}

	if lastErr == nil {
		lastErr = models.NewScrapeError(models.ErrCodeNoStaffFound,
			"no staff records on any candidate path", nil)
	}
	return failedAttempt(target, s.Name(), start, lastErr)
}

// fetchWithRetry fetches one URL with capped exponential backoff between
// attempts. The configured MaxRetries counts total attempts.
func (s *BrowserStrategy) fetchWithRetry(ctx context.Context, pageURL string) (string, error) {
	attempts := s.scraperCfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.scraperCfg.RetryBaseDelay
	expo.MaxInterval = s.scraperCfg.RetryMaxDelay
	expo.Multiplier = 2
	expo.RandomizationFactor = 0.3
	expo.MaxElapsedTime = 0

	var html string
	operation := func() error {
		h, err := s.fetchPage(ctx, pageURL)
		if err != nil {
			return err
		}
		html = h
		return nil
	}

	err := backoff.Retry(operation,
		backoff.WithMaxRetries(backoff.WithContext(expo, ctx), uint64(attempts-1)))
	if err != nil {
		return "", err
	}
	return html, nil
}

// fetchWithRod performs one stealth navigation and returns the rendered
// HTML.
//
// Order matters: stealth JS and header overrides must be installed before
// Navigate or they do not apply to the target document, and the page must
// be closed on every exit path or the browser leaks tabs across a batch.
func (s *BrowserStrategy) fetchWithRod(ctx context.Context, pageURL string) (string, error) {
	browser, err := s.ensureBrowser()
	if err != nil {
		return "", err
	}

	navCtx, cancel := context.WithTimeout(ctx, s.scraperCfg.NavigationTimeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}
	// Close using the original page reference so cleanup succeeds even
	// after the navigation context expires.
	defer func() { _ = page.Close() }()

	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      s.browserCfg.UserAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}); err != nil {
		slog.Warn("user agent override failed", "error", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.browserCfg.ViewportWidth,
		Height:            s.browserCfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		slog.Warn("viewport override failed", "error", err)
	}

	// A search-engine referer reads more organic than a blank one.
	headers := map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Encoding": "gzip, deflate, br",
		"Referer":         "https://www.google.com/search?q=" + url.QueryEscape(hostOf(pageURL)),
	}
	_ = proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}.Call(page)

	p := page.Context(navCtx)

	if err := p.Navigate(pageURL); err != nil {
		return "", categorizeError(err, "navigation failed")
	}

	if err := p.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM", "error", err)
	}

	// Bounded wait for a staff/roster DOM signal; non-fatal on timeout.
	waitCtx, waitCancel := context.WithTimeout(navCtx, s.scraperCfg.SelectorTimeout)
	if err := page.Context(waitCtx).WaitElementsMoreThan(staffSignalSelector, 0); err != nil {
		slog.Debug("no staff DOM signal before timeout", "url", pageURL)
	}
	waitCancel()

	// Humanized pause between load and extraction.
	s.delay.Sleep(navCtx)

	html, err := p.HTML()
	if err != nil {
		return "", categorizeError(err, "failed to extract page HTML")
	}
	return html, nil
}

// ensureBrowser lazily launches and connects the shared browser process.
func (s *BrowserStrategy) ensureBrowser() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}

	l := launcher.New().
		Headless(s.browserCfg.Headless).
		NoSandbox(s.browserCfg.NoSandbox)

	if s.browserCfg.BrowserBin != "" {
		l = l.Bin(s.browserCfg.BrowserBin)
	}
	if s.browserCfg.DefaultProxy != "" {
		l = l.Proxy(s.browserCfg.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeBrowserCrash, "failed to connect to browser", err)
	}
	slog.Info("stealth browser launched", "controlURL", controlURL)

	s.browser = browser
	return browser, nil
}

// Close kills the browser process if one was launched. Call on shutdown to
// prevent zombie Chrome processes.
func (s *BrowserStrategy) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		s.browser.MustClose()
		s.browser = nil
		slog.Info("stealth browser closed")
	}
}

// Active reports whether the shared browser process is running.
func (s *BrowserStrategy) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser != nil
}

// joinURL appends a candidate path to the base URL. An empty path means the
// base URL itself.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimRight(base, "/") + path
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
