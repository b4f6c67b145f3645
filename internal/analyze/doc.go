// Package analyze computes cross-site aggregates from normalized audit
// results: issue frequency classification, score and Core Web Vitals
// statistics, and full report assembly.
//
// Design decision: The batch report build and the interactive tag filter
// must agree bit-for-bit, so both call the same pure functions in this
// package instead of carrying two copies of the aggregation logic. Every
// function here is a pure reduce over its explicit inputs; there is no
// package-level state, no I/O, and no dependency on the network or disk.
//
// All divide-by-zero cases (empty corpus, all-error corpus, metric with no
// present values) degrade to zeros rather than NaN or panics.
package analyze
