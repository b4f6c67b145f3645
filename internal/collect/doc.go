// Package collect fetches Lighthouse audit results for a corpus of sites
// from the PageSpeed Insights API.
//
// Collection is the only I/O-bound stage of the pipeline. Each site is
// fetched independently; a failed fetch produces an errored
// SiteAuditResult and never aborts the batch. Cancelling the context
// stops new fetches and returns the results completed so far, so the
// aggregation pipeline can still run over a partial corpus.
//
// Requests are paced by a shared ticker to stay inside the API's
// 400-requests-per-100-seconds quota, and retried on 429 and transient
// 5xx responses via hashicorp/go-retryablehttp.
package collect
