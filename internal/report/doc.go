// Package report provides report serialization, loading, and output.
//
// This package contains writers for different output formats:
//   - SimpleWriter: Human-readable text output for terminal display
//   - JSONWriter: Structured JSON output for the dashboard and tooling
//   - MarkdownWriter: GitHub-flavored Markdown for documentation
//
// It also owns the load boundary for persisted reports: Load applies a
// single migration step that fills legacy-schema gaps (missing by_theme,
// themes, or per-site tag arrays) so downstream code never null-checks
// for them.
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report
