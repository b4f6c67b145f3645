package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The collection defaults follow the PageSpeed Insights API rate limits
// with an API key: 25,000 requests per day and 400 requests per 100
// seconds (~4 req/s).
const (
	// DefaultAPIEndpoint is the PageSpeed Insights v5 run endpoint.
	DefaultAPIEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

	// DefaultRequestDelay is the politeness delay between API requests.
	// The documented limit allows ~4 req/s; 1.5s leaves a safety margin
	// so a long batch never trips the per-100-seconds quota.
	DefaultRequestDelay = 1500 * time.Millisecond

	// DefaultTimeout is the per-request timeout. The API runs a full
	// Lighthouse audit synchronously, and slow sites routinely take more
	// than a minute, so this must be generous.
	DefaultTimeout = 180 * time.Second

	// DefaultConcurrency is the number of audits requested in parallel.
	// The API quota is enforced per key, not per connection, so the
	// default stays at 1 and relies on DefaultRequestDelay for pacing.
	DefaultConcurrency = 1

	// DefaultStrategy is the Lighthouse analysis strategy.
	// Mobile is the primary strategy because the audited corpus is
	// consumer-facing storefronts.
	DefaultStrategy = "mobile"

	// DefaultRetryMax is the number of retries per request on 429 and
	// transient 5xx responses.
	DefaultRetryMax = 3

	// AppName is the application name used for XDG directory paths.
	AppName = "lighthouse-audit-dashboard"

	// APIKeyEnv is the environment variable holding the PageSpeed API key.
	APIKeyEnv = "GOOGLE_API_KEY"
)

// Categories are the Lighthouse categories requested from the API.
// Only performance and seo feed the report; requesting fewer categories
// also makes each audit noticeably faster.
func Categories() []string {
	return []string{"performance", "seo"}
}

// Config holds all configuration options for an audit run.
// This struct is populated from CLI flags and passed through the
// application via dependency injection rather than global state.
type Config struct {
	// APIKey is the PageSpeed Insights API key. Required for collection;
	// read from the GOOGLE_API_KEY environment variable when the flag is
	// not set. Never logged (see internal/log).
	APIKey string

	// APIEndpoint is the PageSpeed Insights run endpoint. Overridable
	// for testing against a local stub.
	APIEndpoint string

	// SitesFile is the path to the YAML site list.
	SitesFile string

	// RequestDelay is the delay between API requests.
	RequestDelay time.Duration

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Concurrency is the number of audits collected in parallel.
	Concurrency int

	// Limit caps the number of sites audited. Zero means no cap.
	// Useful for smoke-testing a large site list.
	Limit int

	// Strategy is the Lighthouse strategy, "mobile" or "desktop".
	Strategy string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// DBDir is the directory path for the SQLite report history database.
	// When empty, reports are not persisted to the database.
	// Defaults to the XDG data directory.
	DBDir string

	// SaveToDB indicates whether to save reports to the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (delay, timeout,
// strategy). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		APIEndpoint:  DefaultAPIEndpoint,
		RequestDelay: DefaultRequestDelay,
		Timeout:      DefaultTimeout,
		Concurrency:  DefaultConcurrency,
		Strategy:     DefaultStrategy,
	}
}

// XDGDataDir returns the XDG data directory for the dashboard.
// On Linux: ~/.local/share/lighthouse-audit-dashboard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid for a collection run.
// It returns the first error found; fixing one error often makes others
// irrelevant.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	if c.SitesFile == "" {
		return ErrNoSitesFile
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.RequestDelay < 0 {
		return ErrInvalidDelay
	}
	if c.Limit < 0 {
		return ErrInvalidLimit
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.Strategy != "mobile" && c.Strategy != "desktop" {
		return ErrInvalidStrategy
	}
	return nil
}
