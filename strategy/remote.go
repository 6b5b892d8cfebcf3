package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	tls "github.com/refraction-networking/utls"

	"github.com/coachscout/coachscout/cache"
	"github.com/coachscout/coachscout/config"
	"github.com/coachscout/coachscout/extract"
	"github.com/coachscout/coachscout/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// RemoteStrategy acquires page content through a remote content-extraction
// API when one is configured, or by direct HTTP fetch with a Chrome TLS
// fingerprint otherwise, and feeds the content to the extraction engine.
type RemoteStrategy struct {
	cfg       config.RemoteConfig
	extractor *extract.Extractor
	pages     *cache.Cache
	client    *http.Client
}

// NewRemoteStrategy builds the remote strategy. pages may be nil to disable
// content caching.
func NewRemoteStrategy(cfg config.RemoteConfig, extractor *extract.Extractor, pages *cache.Cache) *RemoteStrategy {
	return &RemoteStrategy{
		cfg:       cfg,
		extractor: extractor,
		pages:     pages,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newChromeTransport(),
		},
	}
}

func (s *RemoteStrategy) Name() string { return NameRemote }

// Scrape fetches the target's base athletics URL and extracts staff records
// from the returned content. All failures come back as a failed
// ScrapeAttemptResult so the orchestrator can fall back.
func (s *RemoteStrategy) Scrape(ctx context.Context, target models.Target) *models.ScrapeAttemptResult {
	start := time.Now()

	content, err := s.acquire(ctx, target.BaseURL)
	if err != nil {
		slog.Warn("remote acquisition failed",
			"target", target.DisplayName,
			"url", target.BaseURL,
			"error", err,
		)
		return failedAttempt(target, s.Name(), start, err)
	}

	records := s.extractor.Extract(content)
	return &models.ScrapeAttemptResult{
		Target:       target,
		StrategyUsed: s.Name(),
		Success:      len(records) > 0,
		StaffRecords: records,
		SourceURL:    content.SourceURL,
		ElapsedMs:    time.Since(start).Milliseconds(),
	}
}

// acquire returns normalised page text for the URL, consulting the content
// cache first.
func (s *RemoteStrategy) acquire(ctx context.Context, pageURL string) (models.RawContent, error) {
	if s.pages != nil {
		if cached, hit := s.pages.Get(cache.Key(pageURL)); hit {
			return cached, nil
		}
	}

	var text string
	var err error
	if s.cfg.APIBaseURL != "" {
		text, err = s.remoteExtract(ctx, pageURL)
	} else {
		text, err = s.directFetch(ctx, pageURL)
	}
	if err != nil {
		return models.RawContent{}, err
	}

	content := models.RawContent{
		SourceURL: pageURL,
		Text:      text,
		Length:    len(text),
		Strategy:  s.Name(),
	}
	if s.pages != nil {
		s.pages.Put(cache.Key(pageURL), content)
	}
	return content, nil
}

// remoteExtractRequest is the payload sent to the extraction service.
type remoteExtractRequest struct {
	URL     string   `json:"url"`
	Formats []string `json:"formats"`
}

// remoteExtractResponse is the envelope the extraction service returns.
type remoteExtractResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Markdown string `json:"markdown"`
		HTML     string `json:"html"`
	} `json:"data"`
	Error string `json:"error"`
}

// remoteExtract calls the external content-extraction API with a markdown
// format hint and returns the extracted text.
func (s *RemoteStrategy) remoteExtract(ctx context.Context, pageURL string) (string, error) {
	body, err := json.Marshal(remoteExtractRequest{URL: pageURL, Formats: []string{"markdown"}})
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInternal, "marshal extraction request", err)
	}

	endpoint := strings.TrimRight(s.cfg.APIBaseURL, "/") + "/v1/scrape"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInternal, "build extraction request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeRemoteAPI, "extraction API request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", models.NewScrapeError(models.ErrCodeRemoteAPI,
			fmt.Sprintf("extraction API returned status %d", resp.StatusCode), nil)
	}

	var envelope remoteExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", models.NewScrapeError(models.ErrCodeRemoteAPI, "decode extraction response", err)
	}
	if !envelope.Success {
		return "", models.NewScrapeError(models.ErrCodeRemoteAPI,
			fmt.Sprintf("extraction API error: %s", envelope.Error), nil)
	}

	if envelope.Data.Markdown != "" {
		return envelope.Data.Markdown, nil
	}
	if envelope.Data.HTML != "" {
		return extract.NormalizeHTML(envelope.Data.HTML, hostOf(pageURL)), nil
	}
	return "", models.NewScrapeError(models.ErrCodeRemoteAPI, "extraction API returned empty content", nil)
}

// directFetch retrieves the URL over plain HTTP with browser-like headers
// and converts the HTML to markdown.
func (s *RemoteStrategy) directFetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeInternal, "build fetch request", err)
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "identity")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeNavigation, "direct fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", models.NewScrapeError(models.ErrCodeNavigation,
			fmt.Sprintf("direct fetch returned status %d", resp.StatusCode), nil)
	}

	// 10 MB cap to prevent unbounded memory use.
	const maxBody = 10 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeNavigation, "read response body", err)
	}

	return extract.NormalizeHTML(string(body), hostOf(pageURL)), nil
}

// newChromeTransport builds an http.Transport whose TLS handshake carries a
// Chrome ClientHello via utls, locked to HTTP/1.1 (Go's http.Transport
// cannot frame HTTP/2 over a utls connection).
func newChromeTransport() *http.Transport {
	return &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			dialer := &net.Dialer{Timeout: 10 * time.Second}
			conn, err := dialer.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			host, _, _ := net.SplitHostPort(addr)
			tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloChrome_Auto)
			if err := tlsConn.HandshakeContext(ctx); err != nil {
				conn.Close()
				return nil, err
			}
			return tlsConn, nil
		},
		ForceAttemptHTTP2: false,
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
