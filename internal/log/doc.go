// Package log provides secure structured logging for the audit dashboard.
//
// Every request to the PageSpeed Insights API carries the API key as a
// query parameter, so raw request URLs must never reach the logs. The
// SecureHandler wraps any slog.Handler and masks API keys and other
// credential-shaped attributes before they are written.
package log
