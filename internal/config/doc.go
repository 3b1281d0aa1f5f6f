// Package config provides configuration structures and utilities for
// domaincrawl: crawl seeds and concurrency, fetch settings, URL filter
// rules, content and duplicate thresholds, and output locations.
package config
