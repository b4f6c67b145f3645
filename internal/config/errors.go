package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and support errors.Is()
// for programmatic handling while keeping human-readable messages.
var (
	// ErrNoAPIKey is returned when no PageSpeed Insights API key is
	// available from the flag or the GOOGLE_API_KEY environment variable.
	ErrNoAPIKey = errors.New("no API key: set --api-key or the GOOGLE_API_KEY environment variable")

	// ErrNoSitesFile is returned when no site list file is specified.
	ErrNoSitesFile = errors.New("no site list: provide a sites file with --sites")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidLimit is returned when the site limit is negative.
	// Use 0 to audit the whole site list.
	ErrInvalidLimit = errors.New("invalid limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidStrategy is returned for strategies other than mobile or
	// desktop, the two values the PageSpeed API accepts.
	ErrInvalidStrategy = errors.New(`invalid strategy: must be "mobile" or "desktop"`)

	// ErrSitesFileNotFound is returned when the site list file does not exist.
	ErrSitesFileNotFound = errors.New("site list file not found")
)
