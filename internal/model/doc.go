// Package model defines the data structures shared by the crawler packages.
//
// This package contains the following main types:
//   - FetchResult: The outcome of downloading one URL
//   - Page: An accepted page (unique content within the word bounds)
//   - Report: A point-in-time snapshot of the corpus statistics
//
// The models live in their own package so that the pipeline, report,
// database, and crawler packages can share them without import cycles.
// All of them are serializable to JSON for report output and database storage.
package model
