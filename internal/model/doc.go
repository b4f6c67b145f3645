// Package model defines the core data structures used throughout the
// audit dashboard.
//
// This package contains the following main types:
//   - SiteAuditResult: One site's normalized audit outcome (scores, vitals, issues)
//   - IssueDefinition / IssueRegistry: First-seen metadata for diagnostic issues
//   - ClassifiedIssue: An issue with its cross-site frequency classification
//   - AggregateReport: The full cross-site report that is persisted and served
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (audit, analyze, collect, report) need to use
// these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
