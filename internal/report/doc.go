// Package report renders crawl statistics and records accepted pages.
//
// A Writer renders a model.Report in one of three formats:
//   - text: the plain summary written at the end of every crawl
//   - markdown: tables and a subdomain chart for sharing
//   - json: the report itself for tool integration
//
// PageLog writes the verbose per-page log, one record per accepted page.
package report
