// Package main provides the entry point for the lhaudit CLI.
//
// lhaudit batch-audits websites with the PageSpeed Insights API and
// aggregates the Lighthouse results into a cross-site report: score
// averages, Core Web Vitals statistics, and issues classified by how
// many sites they affect.
//
// Usage:
//
//	lhaudit audit --sites sites.yaml
//	lhaudit filter --tag retail
//
// See --help for all available options.
package main

// main is the entry point for lhaudit.
func main() {
	Execute()
}
