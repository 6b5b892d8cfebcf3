package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server       ServerConfig
	Browser      BrowserConfig
	Scraper      ScraperConfig
	Remote       RemoteConfig
	Orchestrator OrchestratorConfig
	Store        StoreConfig
	Auth         AuthConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	Webhook      WebhookConfig
	Log          LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the default proxy URL for all requests.
	DefaultProxy string

	// UserAgent is the user agent presented on every navigation.
	UserAgent string

	// ViewportWidth/ViewportHeight set a realistic desktop viewport.
	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080
}

// ScraperConfig controls per-target acquisition behavior.
type ScraperConfig struct {
	// NavigationTimeout is the max time for a single page navigation.
	NavigationTimeout time.Duration // default: 25s

	// SelectorTimeout bounds the wait for a staff/roster DOM signal.
	// Non-fatal on expiry.
	SelectorTimeout time.Duration // default: 5s

	// MaxRetries is the number of navigation attempts per URL path before
	// moving to the next candidate path.
	MaxRetries int // default: 3

	// RetryBaseDelay seeds the exponential backoff between retries.
	RetryBaseDelay time.Duration // default: 2s

	// RetryMaxDelay caps the backoff interval.
	RetryMaxDelay time.Duration // default: 20s

	// HumanDelayBase is the base for humanized jitter delays inserted
	// between navigation and content extraction.
	HumanDelayBase time.Duration // default: 1500ms

	// HumanDelayJitter is the jitter ratio (0.0-1.0) around the base.
	HumanDelayJitter float64 // default: 0.5

	// StaffPaths is the ordered list of candidate staff-directory URL
	// paths tried relative to each target's base URL. The empty string
	// means the base URL itself.
	StaffPaths []string
}

// RemoteConfig controls the remote content-extraction API strategy.
type RemoteConfig struct {
	// APIBaseURL is the remote extraction service endpoint. When empty the
	// strategy fetches pages directly over HTTP with a Chrome TLS
	// fingerprint instead of calling out.
	APIBaseURL string

	// APIKey authenticates against the remote extraction service.
	APIKey string

	// Timeout bounds one remote extraction call.
	Timeout time.Duration // default: 30s
}

// OrchestratorConfig controls strategy selection and batch pacing.
type OrchestratorConfig struct {
	// FallbackThreshold is the minimum number of staff records the remote
	// strategy must return before the browser fallback is skipped.
	FallbackThreshold int // default: 3

	// TargetDelay is the politeness pause between consecutive targets.
	TargetDelay time.Duration // default: 3s

	// DifficultTargets lists name substrings of historically bot-resistant
	// programs that skip the remote strategy entirely.
	DifficultTargets []string

	// ReportDir receives the JSON run report at batch completion.
	ReportDir string // default: "reports"
}

// StoreConfig controls the SQLite persistence layer.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string // default: "coachscout.db"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per identity.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// CacheConfig controls the fetched-content cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached pages.
	MaxEntries int // default: 500

	// MaxAge is how long a fetched page stays reusable.
	MaxAge time.Duration // default: 1h
}

// WebhookConfig controls run-completion notifications.
type WebhookConfig struct {
	// URL receives run.completed / run.failed events. Empty disables it.
	URL string

	// Secret signs the payload with HMAC-SHA256 when non-empty.
	Secret string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// defaultStaffPaths is the ordered candidate list of staff-directory paths.
// Ordering matters: dedicated directory pages come before sport subpages,
// and the bare base URL is the last resort.
var defaultStaffPaths = []string{
	"/staff",
	"/coaches",
	"/coaching-staff",
	"/staff-directory",
	"/athletics/staff",
	"/athletics/coaches",
	"/sports/football/coaches",
	"/sports/basketball/coaches",
	"",
}

// defaultDifficultTargets lists programs that historically block the remote
// extraction service and go straight to the stealth browser.
var defaultDifficultTargets = []string{
	"Alabama",
	"Ohio State",
	"Texas A&M",
	"Notre Dame",
	"Michigan",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("COACHSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("COACHSCOUT_PORT", 8080),
			Mode: envOr("COACHSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("COACHSCOUT_HEADLESS", true),
			NoSandbox:      envBoolOr("COACHSCOUT_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("COACHSCOUT_BROWSER_BIN"),
			DefaultProxy:   os.Getenv("COACHSCOUT_PROXY"),
			UserAgent:      envOr("COACHSCOUT_USER_AGENT", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
			ViewportWidth:  envIntOr("COACHSCOUT_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("COACHSCOUT_VIEWPORT_HEIGHT", 1080),
		},
		Scraper: ScraperConfig{
			NavigationTimeout: envDurationOr("COACHSCOUT_NAV_TIMEOUT", 25*time.Second),
			SelectorTimeout:   envDurationOr("COACHSCOUT_SELECTOR_TIMEOUT", 5*time.Second),
			MaxRetries:        envIntOr("COACHSCOUT_MAX_RETRIES", 3),
			RetryBaseDelay:    envDurationOr("COACHSCOUT_RETRY_BASE_DELAY", 2*time.Second),
			RetryMaxDelay:     envDurationOr("COACHSCOUT_RETRY_MAX_DELAY", 20*time.Second),
			HumanDelayBase:    envDurationOr("COACHSCOUT_HUMAN_DELAY", 1500*time.Millisecond),
			HumanDelayJitter:  envFloatOr("COACHSCOUT_HUMAN_JITTER", 0.5),
			StaffPaths:        envSliceOr("COACHSCOUT_STAFF_PATHS", defaultStaffPaths),
		},
		Remote: RemoteConfig{
			APIBaseURL: os.Getenv("COACHSCOUT_REMOTE_API_URL"),
			APIKey:     os.Getenv("COACHSCOUT_REMOTE_API_KEY"),
			Timeout:    envDurationOr("COACHSCOUT_REMOTE_TIMEOUT", 30*time.Second),
		},
		Orchestrator: OrchestratorConfig{
			FallbackThreshold: envIntOr("COACHSCOUT_FALLBACK_THRESHOLD", 3),
			TargetDelay:       envDurationOr("COACHSCOUT_TARGET_DELAY", 3*time.Second),
			DifficultTargets:  envSliceOr("COACHSCOUT_DIFFICULT_TARGETS", defaultDifficultTargets),
			ReportDir:         envOr("COACHSCOUT_REPORT_DIR", "reports"),
		},
		Store: StoreConfig{
			Path: envOr("COACHSCOUT_DB_PATH", "coachscout.db"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("COACHSCOUT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("COACHSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("COACHSCOUT_RATE_RPS", 5.0),
			Burst:             envIntOr("COACHSCOUT_RATE_BURST", 10),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("COACHSCOUT_CACHE_MAX_ENTRIES", 500),
			MaxAge:     envDurationOr("COACHSCOUT_CACHE_MAX_AGE", time.Hour),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("COACHSCOUT_WEBHOOK_URL"),
			Secret: os.Getenv("COACHSCOUT_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("COACHSCOUT_LOG_LEVEL", "info"),
			Format: envOr("COACHSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
