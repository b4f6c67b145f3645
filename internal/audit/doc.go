// Package audit turns raw Lighthouse payloads into normalized per-site
// audit results.
//
// The package has two halves:
//   - the metric normalizer, which reads category scores and Core Web
//     Vitals values field by field, tolerating any missing field
//   - the issue extractor, which derives the list of actionable diagnostic
//     findings and registers first-seen issue metadata
//
// Both halves are pure per-site functions. No parse failure escapes this
// package: a structurally unusable payload degrades to the site-level
// error state instead. We read payloads with gjson rather than decoding
// into structs because the payload schema is owned by the audit API and
// only a handful of paths matter to us.
package audit
