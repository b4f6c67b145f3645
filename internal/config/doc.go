// Package config provides configuration structures and utilities for the
// audit dashboard. It defines the main options for collecting audits from
// the PageSpeed Insights API, the site list file format, and report
// generation preferences.
package config
